// Package rngseed implements the deterministic RNG hierarchy: a
// master seed expands into per-(run_id, symbol,
// iteration) sub-seeds via BLAKE3, independent of thread scheduling
// order, so the outer sweep's results never depend on thread count.
package rngseed

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/trendlab-go/trendlab/internal/domain"
	"lukechampine.com/blake3"
)

// Hierarchy derives sub-seeds from a single master seed.
type Hierarchy struct {
	masterSeed uint64
}

// New returns a hierarchy rooted at masterSeed.
func New(masterSeed uint64) Hierarchy {
	return Hierarchy{masterSeed: masterSeed}
}

// MasterSeed returns the root seed this hierarchy was built from.
func (h Hierarchy) MasterSeed() uint64 { return h.masterSeed }

// SubSeed derives a deterministic 64-bit seed for (runID, symbol,
// iteration). Byte layout is fixed:
// master_seed.to_le_bytes() || run_id bytes || symbol bytes ||
// iteration.to_le_bytes(), first 8 bytes of the BLAKE3 digest read
// little-endian.
func (h Hierarchy) SubSeed(runID domain.RunID, symbol string, iteration uint64) uint64 {
	hasher := blake3.New(32, nil)

	var masterBuf [8]byte
	binary.LittleEndian.PutUint64(masterBuf[:], h.masterSeed)
	hasher.Write(masterBuf[:])

	hasher.Write([]byte(runID))
	hasher.Write([]byte(symbol))

	var iterBuf [8]byte
	binary.LittleEndian.PutUint64(iterBuf[:], iteration)
	hasher.Write(iterBuf[:])

	digest := hasher.Sum(nil)
	return binary.LittleEndian.Uint64(digest[:8])
}

// RNGFor returns a deterministic generator seeded from SubSeed. The
// concrete algorithm only needs to be deterministic and portable;
// PCG is the standard-library generator that fits.
func (h Hierarchy) RNGFor(runID domain.RunID, symbol string, iteration uint64) *rand.Rand {
	seed := h.SubSeed(runID, symbol, iteration)
	// Fold the 64-bit seed into PCG's two required uint64 halves via a
	// second, independent hash so the two halves are not trivially
	// related (seed, ^seed would correlate low/high bits).
	hi := h.SubSeed(runID, symbol, iteration^0x9E3779B97F4A7C15)
	return rand.New(rand.NewPCG(seed, hi))
}
