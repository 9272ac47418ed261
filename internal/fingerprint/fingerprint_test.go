package fingerprint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trendlab-go/trendlab/internal/domain"
)

func sampleConfig() domain.StrategyConfig {
	return domain.StrategyConfig{
		Signal:          domain.ComponentConfig{ComponentType: "donchian_breakout", Params: map[string]float64{"entry_lookback": 20, "exit_lookback": 10}},
		Filter:          domain.ComponentConfig{ComponentType: "adx_trend_strength", Params: map[string]float64{"period": 14, "threshold": 20}},
		PositionManager: domain.ComponentConfig{ComponentType: "atr_trailing", Params: map[string]float64{"atr_period": 14, "multiplier": 3}},
		ExecutionModel:  domain.ComponentConfig{ComponentType: "next_bar_open", Params: map[string]float64{"preset": 1}},
		Sizer:           domain.ComponentConfig{ComponentType: "fixed_notional", Params: map[string]float64{"amount": 10000}},
	}
}

// Round-trip law: StrategyConfig -> JSON -> StrategyConfig preserves
// FullHash.
func TestFullHashSurvivesJSONRoundTrip(t *testing.T) {
	cfg := sampleConfig()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded domain.StrategyConfig
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, FullHash(cfg), FullHash(decoded))
}

// ConfigHash depends only on the component type tuple, never on
// parameter values.
func TestConfigHashIgnoresParams(t *testing.T) {
	a := sampleConfig()
	b := sampleConfig()
	b.Signal.Params = map[string]float64{"entry_lookback": 55, "exit_lookback": 20}
	b.PositionManager.Params["multiplier"] = 5

	require.Equal(t, ConfigHash(a), ConfigHash(b))
	require.NotEqual(t, FullHash(a), FullHash(b))
}

func TestConfigHashDiffersByStructure(t *testing.T) {
	a := sampleConfig()
	b := sampleConfig()
	b.PositionManager.ComponentType = "chandelier"
	require.NotEqual(t, ConfigHash(a), ConfigHash(b))
}

// The sizer participates in structural identity.
func TestConfigHashIncludesSizer(t *testing.T) {
	a := sampleConfig()
	b := sampleConfig()
	b.Sizer.ComponentType = "atr_risk"
	require.NotEqual(t, ConfigHash(a), ConfigHash(b))
}

func TestFullHashStableAcrossMapOrder(t *testing.T) {
	a := sampleConfig()
	// Rebuild the params map to force a different insertion order.
	b := sampleConfig()
	b.Signal.Params = map[string]float64{"exit_lookback": 10, "entry_lookback": 20}
	require.Equal(t, FullHash(a), FullHash(b))
}

func TestRunIDDependsOnAllInputs(t *testing.T) {
	cfg := ConfigHash(sampleConfig())
	base := ComputeRunID(cfg, "dataset-a", 42)

	require.NotEqual(t, base, ComputeRunID(cfg, "dataset-b", 42))
	require.NotEqual(t, base, ComputeRunID(cfg, "dataset-a", 43))
	require.Equal(t, base, ComputeRunID(cfg, "dataset-a", 42))
}
