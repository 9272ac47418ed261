package composer

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/trendlab-go/trendlab/internal/domain"
	"lukechampine.com/blake3"
)

// Manifest is the deterministic audit record of a composed strategy:
// the five component type names, their parameter maps, and a BLAKE3
// hash over the canonical rendering of all of it. The hash doubles as
// the result-cache key for the composition.
type Manifest struct {
	SignalName          string                        `json:"signal_name"`
	FilterName          string                        `json:"filter_name"`
	PositionManagerName string                        `json:"position_manager_name"`
	ExecutionModelName  string                        `json:"execution_model_name"`
	SizerName           string                        `json:"sizer_name"`
	Params              map[string]map[string]float64 `json:"params"`
	Hash                string                        `json:"hash"`
}

// NewManifest renders cfg canonically and hashes it. Roles are
// rendered in a fixed order and parameter keys are sorted, so two
// identical configs always produce identical bytes, regardless of map
// iteration order.
func NewManifest(cfg domain.StrategyConfig) Manifest {
	m := Manifest{
		SignalName:          cfg.Signal.ComponentType,
		FilterName:          cfg.Filter.ComponentType,
		PositionManagerName: cfg.PositionManager.ComponentType,
		ExecutionModelName:  cfg.ExecutionModel.ComponentType,
		SizerName:           cfg.Sizer.ComponentType,
		Params: map[string]map[string]float64{
			"signal":           cfg.Signal.Params,
			"filter":           cfg.Filter.Params,
			"position_manager": cfg.PositionManager.Params,
			"execution_model":  cfg.ExecutionModel.Params,
			"sizer":            cfg.Sizer.Params,
		},
	}
	m.Hash = m.computeHash()
	return m
}

func (m *Manifest) computeHash() string {
	canonical := fmt.Sprintf("signal=%s%s|filter=%s%s|position_manager=%s%s|execution_model=%s%s|sizer=%s%s",
		m.SignalName, renderParams(m.Params["signal"]),
		m.FilterName, renderParams(m.Params["filter"]),
		m.PositionManagerName, renderParams(m.Params["position_manager"]),
		m.ExecutionModelName, renderParams(m.Params["execution_model"]),
		m.SizerName, renderParams(m.Params["sizer"]),
	)
	sum := blake3.Sum256([]byte(canonical))
	return fmt.Sprintf("%x", sum)
}

func renderParams(params map[string]float64) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += ";" + k + "=" + strconv.FormatFloat(params[k], 'g', -1, 64)
	}
	return out
}
