package backtest

import (
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/execmodel"
	"github.com/trendlab-go/trendlab/internal/ladder"
)

// trialModel decorates an execution model with a ladder trial's cost
// and path perturbations while leaving entry-order selection alone.
type trialModel struct {
	execmodel.Model
	slippageMult   float64
	commissionMult float64
	pathOverride   *execmodel.PathPolicy
}

func applyTrialOverrides(m execmodel.Model, trial ladder.TrialOptions) execmodel.Model {
	if trial.SlippageMultiplier == 0 && trial.CommissionMultiplier == 0 && trial.PathOverride == nil {
		return m
	}
	return &trialModel{
		Model:          m,
		slippageMult:   orOne(trial.SlippageMultiplier),
		commissionMult: orOne(trial.CommissionMultiplier),
		pathOverride:   trial.PathOverride,
	}
}

func orOne(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}

func (t *trialModel) SlippageBps() float64   { return t.Model.SlippageBps() * t.slippageMult }
func (t *trialModel) CommissionBps() float64 { return t.Model.CommissionBps() * t.commissionMult }

func (t *trialModel) PathPolicy() execmodel.PathPolicy {
	if t.pathOverride != nil {
		return *t.pathOverride
	}
	return t.Model.PathPolicy()
}

func (t *trialModel) EntryOrderType(signal domain.SignalEvent, bar domain.Bar) (domain.OrderType, float64, float64) {
	return t.Model.EntryOrderType(signal, bar)
}
