package composer

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trendlab-go/trendlab/internal/domain"
)

func fullConfig() domain.StrategyConfig {
	return domain.StrategyConfig{
		Signal:          domain.ComponentConfig{ComponentType: "donchian_breakout", Params: map[string]float64{"entry_lookback": 20, "exit_lookback": 10}},
		Filter:          domain.ComponentConfig{ComponentType: "adx_trend_strength", Params: map[string]float64{"period": 14, "threshold": 20}},
		PositionManager: domain.ComponentConfig{ComponentType: "chandelier", Params: map[string]float64{"atr_period": 22, "multiplier": 3}},
		ExecutionModel:  domain.ComponentConfig{ComponentType: "stop_entry", Params: map[string]float64{"preset": 2}},
		Sizer:           domain.ComponentConfig{ComponentType: "atr_risk", Params: map[string]float64{"atr_period": 14, "risk_pct": 0.01, "atr_multiplier": 3}},
	}
}

func TestComposeBindsAllFiveRoles(t *testing.T) {
	composed, err := Compose(fullConfig(), 0.01)
	require.NoError(t, err)

	s := composed.Strategy
	require.Equal(t, "donchian_breakout", s.Signal.Name())
	require.Equal(t, "adx_trend_strength", s.Filter.Name())
	require.Equal(t, "chandelier", s.PositionManager.Name())
	require.Equal(t, "stop_entry", s.ExecutionModel.Name())
	require.Equal(t, "atr_risk", s.Sizer.Name())
}

// Indicator requirements are collected from every role and
// deduplicated by name: each indicator appears once, however many
// roles request it.
func TestComposeCollectsIndicators(t *testing.T) {
	composed, err := Compose(fullConfig(), 0.01)
	require.NoError(t, err)

	names := map[string]int{}
	for _, ind := range composed.Indicators {
		names[ind.Name()]++
	}
	for name, count := range names {
		require.Equal(t, 1, count, "indicator %s duplicated", name)
	}
	require.Contains(t, names, "donchian_upper_20")
	require.Contains(t, names, "donchian_lower_10")
	require.Contains(t, names, "adx_14")
	require.Contains(t, names, "atr_22")
	require.Contains(t, names, "atr_14")
}

func TestComposeUnknownComponent(t *testing.T) {
	cfg := fullConfig()
	cfg.PositionManager.ComponentType = "psychic_stop"
	_, err := Compose(cfg, 0.01)
	require.ErrorContains(t, err, "psychic_stop")
}

func TestComposeMissingParam(t *testing.T) {
	cfg := fullConfig()
	delete(cfg.Sizer.Params, "risk_pct")
	_, err := Compose(cfg, 0.01)
	require.ErrorContains(t, err, "risk_pct")
}

func TestComposeRejectsNonIntegerPeriod(t *testing.T) {
	cfg := fullConfig()
	cfg.Filter.Params["period"] = 14.5
	_, err := Compose(cfg, 0.01)
	require.ErrorContains(t, err, "positive integer")
}

func TestManifestHashDeterministic(t *testing.T) {
	a := NewManifest(fullConfig())
	b := NewManifest(fullConfig())
	require.Equal(t, a.Hash, b.Hash)
	require.NotEmpty(t, a.Hash)
}

func TestManifestHashSensitiveToParams(t *testing.T) {
	a := NewManifest(fullConfig())
	cfg := fullConfig()
	cfg.PositionManager.Params["multiplier"] = 4
	b := NewManifest(cfg)
	require.NotEqual(t, a.Hash, b.Hash)
}

func TestManifestIncludesSizer(t *testing.T) {
	a := NewManifest(fullConfig())
	cfg := fullConfig()
	cfg.Sizer = domain.ComponentConfig{ComponentType: "fixed_shares", Params: map[string]float64{"shares": 100}}
	b := NewManifest(cfg)
	require.NotEqual(t, a.Hash, b.Hash)
}
