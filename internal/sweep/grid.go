// Package sweep implements the parameter-sweep orchestrator: a grid
// of strategy variants dispatched to a fixed worker pool, each
// evaluated by the robustness ladder, with survivors ranked on a
// shared leaderboard.
package sweep

import (
	"github.com/trendlab-go/trendlab/internal/domain"
)

// Grid enumerates candidate components per role; Expand takes the
// cartesian product across the five roles.
type Grid struct {
	Signals          []domain.ComponentConfig
	Filters          []domain.ComponentConfig
	PositionManagers []domain.ComponentConfig
	ExecutionModels  []domain.ComponentConfig
	Sizers           []domain.ComponentConfig
}

// Expand produces every combination, outermost role varying slowest.
// Order is deterministic: the leaderboard and history see candidates
// in the same sequence on every machine.
func (g Grid) Expand() []domain.StrategyConfig {
	var out []domain.StrategyConfig
	for _, sig := range g.Signals {
		for _, flt := range g.Filters {
			for _, pm := range g.PositionManagers {
				for _, em := range g.ExecutionModels {
					for _, sz := range g.Sizers {
						out = append(out, domain.StrategyConfig{
							Signal:          sig,
							Filter:          flt,
							PositionManager: pm,
							ExecutionModel:  em,
							Sizer:           sz,
						})
					}
				}
			}
		}
	}
	return out
}

// DefaultGrid is the stock trend-following sweep: three signal
// families, light filtering, the full PM spread, realistic execution,
// and two sizing schemes.
func DefaultGrid() Grid {
	params := func(kv ...any) map[string]float64 {
		m := make(map[string]float64, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			m[kv[i].(string)] = kv[i+1].(float64)
		}
		return m
	}
	return Grid{
		Signals: []domain.ComponentConfig{
			{ComponentType: "donchian_breakout", Params: params("entry_lookback", 20.0, "exit_lookback", 10.0)},
			{ComponentType: "donchian_breakout", Params: params("entry_lookback", 55.0, "exit_lookback", 20.0)},
			{ComponentType: "ma_cross", Params: params("fast_period", 20.0, "slow_period", 100.0)},
			{ComponentType: "momentum_roc", Params: params("lookback", 60.0, "threshold", 0.08)},
		},
		Filters: []domain.ComponentConfig{
			{ComponentType: "passthrough"},
			{ComponentType: "adx_trend_strength", Params: params("period", 14.0, "threshold", 20.0)},
		},
		PositionManagers: []domain.ComponentConfig{
			{ComponentType: "percent_trailing", Params: params("pct", 0.10)},
			{ComponentType: "atr_trailing", Params: params("atr_period", 14.0, "multiplier", 3.0)},
			{ComponentType: "chandelier", Params: params("atr_period", 22.0, "multiplier", 3.0)},
			{ComponentType: "breakeven_then_trail", Params: params("trigger_pct", 0.05, "trail_pct", 0.08)},
			{ComponentType: "max_holding_period", Params: params("max_bars", 120.0)},
		},
		ExecutionModels: []domain.ComponentConfig{
			{ComponentType: "next_bar_open", Params: params("preset", 1.0)},
			{ComponentType: "stop_entry", Params: params("preset", 1.0)},
		},
		Sizers: []domain.ComponentConfig{
			{ComponentType: "fixed_notional", Params: params("amount", 10_000.0)},
			{ComponentType: "atr_risk", Params: params("atr_period", 14.0, "risk_pct", 0.01, "atr_multiplier", 3.0)},
		},
	}
}
