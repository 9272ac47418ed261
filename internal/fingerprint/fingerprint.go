// Package fingerprint derives the deterministic content hashes that
// identify a strategy configuration and a run: ConfigHash, FullHash,
// and RunID, all BLAKE3-derived hex strings. DatasetHash is derived
// in internal/barstore.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/trendlab-go/trendlab/internal/domain"
	"lukechampine.com/blake3"
)

// canonicalComponent renders a ComponentConfig deterministically: the
// component type name followed by its params sorted by key, each
// value in a canonical decimal encoding (never a native bit
// pattern).
func canonicalComponent(c domain.ComponentConfig) string {
	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := c.ComponentType
	for _, k := range keys {
		s += fmt.Sprintf(";%s=%s", k, formatF64(c.Params[k]))
	}
	return s
}

// formatF64 is the canonical decimal formatting used everywhere a
// float64 feeds a hash: shortest round-tripping decimal
// representation, independent of platform bit-pattern quirks.
func formatF64(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func hashBytes(b []byte) string {
	sum := blake3.Sum256(b)
	return fmt.Sprintf("%x", sum)
}

// ConfigHash hashes only the five component type names (structural
// identity): two strategies with the same structure but different
// parameters share a ConfigHash. The hash spans all five roles, so
// structural identity includes the sizer.
func ConfigHash(c domain.StrategyConfig) domain.ConfigHash {
	structural := fmt.Sprintf("%s+%s+%s+%s+%s",
		c.Signal.ComponentType,
		c.Filter.ComponentType,
		c.PositionManager.ComponentType,
		c.ExecutionModel.ComponentType,
		c.Sizer.ComponentType,
	)
	return domain.ConfigHash(hashBytes([]byte(structural)))
}

// FullHash hashes component types plus every parameter value.
func FullHash(c domain.StrategyConfig) domain.FullHash {
	full := fmt.Sprintf("%s|%s|%s|%s|%s",
		canonicalComponent(c.Signal),
		canonicalComponent(c.Filter),
		canonicalComponent(c.PositionManager),
		canonicalComponent(c.ExecutionModel),
		canonicalComponent(c.Sizer),
	)
	return domain.FullHash(hashBytes([]byte(full)))
}

// RunFingerprint is the complete, JSONL-persisted record of one run.
type RunFingerprint struct {
	RunID           domain.RunID           `json:"run_id"`
	Timestamp       time.Time              `json:"timestamp"`
	Seed            uint64                 `json:"seed"`
	Symbol          string                 `json:"symbol"`
	StartDate       time.Time              `json:"start_date"`
	EndDate         time.Time              `json:"end_date"`
	TradingMode     domain.TradingMode     `json:"trading_mode"`
	InitialCapital  float64                `json:"initial_capital"`
	StrategyConfig  domain.StrategyConfig  `json:"strategy_config"`
	ConfigHash      domain.ConfigHash      `json:"config_hash"`
	FullHash        domain.FullHash        `json:"full_hash"`
	DatasetHash     domain.DatasetHash     `json:"dataset_hash"`
}

// ComputeRunID hashes (configHash, datasetHash, seed) into a RunId.
func ComputeRunID(cfg domain.ConfigHash, dataset domain.DatasetHash, seed uint64) domain.RunID {
	s := fmt.Sprintf("%s|%s|%d", cfg, dataset, seed)
	return domain.RunID(hashBytes([]byte(s)))
}

// MarshalCanonicalJSON serializes v with sorted map keys. Go's
// encoding/json already sorts map[string]... keys, so this is a thin,
// explicitly-named wrapper documenting that guarantee for callers that
// need to hash the result.
func MarshalCanonicalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
