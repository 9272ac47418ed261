// Package composer implements C12: binding a StrategyConfig's five
// component descriptions into live components, deriving the indicator
// set they need, and computing the deterministic StrategyManifest used
// as the cache key and audit ID.
package composer

import (
	"fmt"

	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/engine"
	"github.com/trendlab-go/trendlab/internal/execmodel"
	"github.com/trendlab-go/trendlab/internal/indicators"
	"github.com/trendlab-go/trendlab/internal/posmanager"
	"github.com/trendlab-go/trendlab/internal/signalfilter"
	"github.com/trendlab-go/trendlab/internal/signalgen"
	"github.com/trendlab-go/trendlab/internal/sizer"
)

// Composed is a fully bound strategy plus the indicators its
// components read. Indicators are deduplicated by name.
type Composed struct {
	Strategy   engine.Strategy
	Indicators []indicators.Indicator
	Manifest   Manifest
}

// Compose resolves every ComponentConfig against the registry and
// assembles the runnable strategy. Unknown component types or missing
// parameters are configuration errors: fail fast, exit code 1.
func Compose(cfg domain.StrategyConfig, tickSize float64) (*Composed, error) {
	b := &builder{tickSize: tickSize, seen: make(map[string]bool)}

	signal, err := b.signal(cfg.Signal)
	if err != nil {
		return nil, err
	}
	filter, err := b.filter(cfg.Filter)
	if err != nil {
		return nil, err
	}
	pm, err := b.positionManager(cfg.PositionManager)
	if err != nil {
		return nil, err
	}
	model, err := b.executionModel(cfg.ExecutionModel)
	if err != nil {
		return nil, err
	}
	sz, err := b.sizer(cfg.Sizer)
	if err != nil {
		return nil, err
	}

	return &Composed{
		Strategy: engine.Strategy{
			Signal:          signal,
			Filter:          filter,
			PositionManager: pm,
			ExecutionModel:  model,
			Sizer:           sz,
		},
		Indicators: b.indicators,
		Manifest:   NewManifest(cfg),
	}, nil
}

// builder accumulates the indicator requirements of each bound
// component.
type builder struct {
	tickSize   float64
	indicators []indicators.Indicator
	seen       map[string]bool
}

func (b *builder) need(ind indicators.Indicator) {
	if b.seen[ind.Name()] {
		return
	}
	b.seen[ind.Name()] = true
	b.indicators = append(b.indicators, ind)
}

// param fetches a required parameter.
func param(c domain.ComponentConfig, key string) (float64, error) {
	v, ok := c.Params[key]
	if !ok {
		return 0, fmt.Errorf("composer: component %q missing parameter %q", c.ComponentType, key)
	}
	return v, nil
}

// paramOr fetches a parameter with a default.
func paramOr(c domain.ComponentConfig, key string, def float64) float64 {
	if v, ok := c.Params[key]; ok {
		return v
	}
	return def
}

func intParam(c domain.ComponentConfig, key string) (int, error) {
	v, err := param(c, key)
	if err != nil {
		return 0, err
	}
	if v != float64(int(v)) || v <= 0 {
		return 0, fmt.Errorf("composer: component %q parameter %q must be a positive integer, got %g", c.ComponentType, key, v)
	}
	return int(v), nil
}

func (b *builder) signal(c domain.ComponentConfig) (signalgen.Generator, error) {
	switch c.ComponentType {
	case "donchian_breakout":
		entry, err := intParam(c, "entry_lookback")
		if err != nil {
			return nil, err
		}
		exit, err := intParam(c, "exit_lookback")
		if err != nil {
			return nil, err
		}
		b.need(indicators.NewDonchianUpper(entry))
		b.need(indicators.NewDonchianLower(exit))
		return signalgen.NewDonchianBreakout(entry, exit), nil
	case "ma_cross":
		fast, err := intParam(c, "fast_period")
		if err != nil {
			return nil, err
		}
		slow, err := intParam(c, "slow_period")
		if err != nil {
			return nil, err
		}
		if fast >= slow {
			return nil, fmt.Errorf("composer: ma_cross fast_period %d must be below slow_period %d", fast, slow)
		}
		b.need(indicators.NewSMA(fast))
		b.need(indicators.NewSMA(slow))
		return signalgen.NewMACross(fast, slow), nil
	case "momentum_roc":
		lookback, err := intParam(c, "lookback")
		if err != nil {
			return nil, err
		}
		threshold, err := param(c, "threshold")
		if err != nil {
			return nil, err
		}
		return signalgen.NewMomentumROC(lookback, threshold), nil
	default:
		return nil, fmt.Errorf("composer: unknown signal generator %q", c.ComponentType)
	}
}

func (b *builder) filter(c domain.ComponentConfig) (signalfilter.Filter, error) {
	switch c.ComponentType {
	case "passthrough", "":
		return signalfilter.NewPassthrough(), nil
	case "adx_trend_strength":
		period, err := intParam(c, "period")
		if err != nil {
			return nil, err
		}
		threshold, err := param(c, "threshold")
		if err != nil {
			return nil, err
		}
		b.need(indicators.NewADX(period))
		return signalfilter.NewAdxTrendStrength(period, threshold), nil
	case "regime_gate":
		fast, err := intParam(c, "fast_period")
		if err != nil {
			return nil, err
		}
		slow, err := intParam(c, "slow_period")
		if err != nil {
			return nil, err
		}
		atrPeriod, err := intParam(c, "atr_period")
		if err != nil {
			return nil, err
		}
		b.need(indicators.NewSMA(fast))
		b.need(indicators.NewSMA(slow))
		b.need(indicators.NewATR(atrPeriod))
		return signalfilter.NewRegimeGate(fast, slow, atrPeriod,
			paramOr(c, "slope_threshold", 0), paramOr(c, "vol_threshold", 0.10)), nil
	case "volatility_band":
		atrPeriod, err := intParam(c, "atr_period")
		if err != nil {
			return nil, err
		}
		b.need(indicators.NewATR(atrPeriod))
		return signalfilter.NewVolatilityBand(atrPeriod,
			paramOr(c, "min_atr_pct", 0), paramOr(c, "max_atr_pct", 1)), nil
	case "min_strength":
		threshold, err := param(c, "threshold")
		if err != nil {
			return nil, err
		}
		return signalfilter.NewMinStrength(threshold), nil
	default:
		return nil, fmt.Errorf("composer: unknown signal filter %q", c.ComponentType)
	}
}

func (b *builder) positionManager(c domain.ComponentConfig) (posmanager.Manager, error) {
	switch c.ComponentType {
	case "fixed_stop_loss":
		pct, err := param(c, "pct")
		if err != nil {
			return nil, err
		}
		return posmanager.NewFixedStopLoss(pct), nil
	case "frozen_reference":
		pct, err := param(c, "pct")
		if err != nil {
			return nil, err
		}
		return posmanager.NewFrozenReference(pct), nil
	case "percent_trailing":
		pct, err := param(c, "pct")
		if err != nil {
			return nil, err
		}
		return posmanager.NewPercentTrailing(pct), nil
	case "atr_trailing":
		period, err := intParam(c, "atr_period")
		if err != nil {
			return nil, err
		}
		mult, err := param(c, "multiplier")
		if err != nil {
			return nil, err
		}
		b.need(indicators.NewATR(period))
		return posmanager.NewAtrTrailing(period, mult), nil
	case "chandelier":
		period, err := intParam(c, "atr_period")
		if err != nil {
			return nil, err
		}
		mult, err := param(c, "multiplier")
		if err != nil {
			return nil, err
		}
		b.need(indicators.NewATR(period))
		return posmanager.NewChandelier(period, mult), nil
	case "since_entry_trailing":
		pct, err := param(c, "pct")
		if err != nil {
			return nil, err
		}
		return posmanager.NewSinceEntryTrailing(pct), nil
	case "breakeven_then_trail":
		trigger, err := param(c, "trigger_pct")
		if err != nil {
			return nil, err
		}
		trail, err := param(c, "trail_pct")
		if err != nil {
			return nil, err
		}
		return posmanager.NewBreakevenThenTrail(trigger, trail), nil
	case "time_decay":
		initial, err := param(c, "initial_pct")
		if err != nil {
			return nil, err
		}
		decay, err := param(c, "decay")
		if err != nil {
			return nil, err
		}
		return posmanager.NewTimeDecay(initial, decay, paramOr(c, "min_pct", 0.01)), nil
	case "max_holding_period":
		maxBars, err := intParam(c, "max_bars")
		if err != nil {
			return nil, err
		}
		return posmanager.NewMaxHoldingPeriod(maxBars), nil
	default:
		return nil, fmt.Errorf("composer: unknown position manager %q", c.ComponentType)
	}
}

// presetFor decodes the "preset" parameter (0 frictionless, 1
// realistic, 2 hostile, 3 optimistic). Parameters are f64 by
// contract, so presets travel as small integers.
func presetFor(c domain.ComponentConfig) (execmodel.Preset, error) {
	switch int(paramOr(c, "preset", 1)) {
	case 0:
		return execmodel.Frictionless(), nil
	case 1:
		return execmodel.Realistic(), nil
	case 2:
		return execmodel.Hostile(), nil
	case 3:
		return execmodel.Optimistic(), nil
	default:
		return execmodel.Preset{}, fmt.Errorf("composer: component %q has unknown preset %g", c.ComponentType, c.Params["preset"])
	}
}

func (b *builder) executionModel(c domain.ComponentConfig) (execmodel.Model, error) {
	preset, err := presetFor(c)
	if err != nil {
		return nil, err
	}
	switch c.ComponentType {
	case "next_bar_open":
		return execmodel.NewNextBarOpen(preset), nil
	case "close_on_signal":
		return execmodel.NewCloseOnSignal(preset), nil
	case "stop_entry":
		return execmodel.NewStopEntry(preset, b.tickSize), nil
	case "limit_entry":
		return execmodel.NewLimitEntry(preset, paramOr(c, "offset_bps", 10)), nil
	default:
		return nil, fmt.Errorf("composer: unknown execution model %q", c.ComponentType)
	}
}

func (b *builder) sizer(c domain.ComponentConfig) (sizer.Sizer, error) {
	switch c.ComponentType {
	case "fixed_shares":
		shares, err := param(c, "shares")
		if err != nil {
			return nil, err
		}
		return sizer.NewFixedShares(shares), nil
	case "fixed_notional":
		amount, err := param(c, "amount")
		if err != nil {
			return nil, err
		}
		return sizer.NewFixedNotional(amount), nil
	case "atr_risk":
		period, err := intParam(c, "atr_period")
		if err != nil {
			return nil, err
		}
		riskPct, err := param(c, "risk_pct")
		if err != nil {
			return nil, err
		}
		mult, err := param(c, "atr_multiplier")
		if err != nil {
			return nil, err
		}
		b.need(indicators.NewATR(period))
		return sizer.NewAtrRisk(period, riskPct, mult), nil
	default:
		return nil, fmt.Errorf("composer: unknown sizer %q", c.ComponentType)
	}
}
