package barstore

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/trendlab-go/trendlab/internal/domain"
	"lukechampine.com/blake3"
)

// hashSampleStride samples every Nth row's content into the dataset
// hash. Full-content hashing is unnecessary for identity: height,
// schema, endpoints, and strided samples pin the frame down while
// keeping hashing O(n/stride).
const hashSampleStride = 16

// DatasetHash fingerprints the canonicalized bar frames a run
// consumes: schema version, per-symbol height, and sampled column
// content, with symbols visited in sorted order so the hash is
// independent of map iteration.
func DatasetHash(bySymbol map[string][]domain.Bar) domain.DatasetHash {
	symbols := make([]string, 0, len(bySymbol))
	for s := range bySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	h := blake3.New(32, nil)
	h.Write([]byte(schemaVersion))

	var buf [8]byte
	writeF64 := func(f float64) {
		// Canonical decimal formatting, never native bit patterns
		// (NaN has no canonical bits; the literal "NaN" does).
		h.Write([]byte(strconv.FormatFloat(f, 'g', -1, 64)))
		h.Write([]byte{';'})
	}

	for _, sym := range symbols {
		bars := bySymbol[sym]
		h.Write([]byte(sym))
		binary.LittleEndian.PutUint64(buf[:], uint64(len(bars)))
		h.Write(buf[:])

		for i, b := range bars {
			if i%hashSampleStride != 0 && i != len(bars)-1 {
				continue
			}
			binary.LittleEndian.PutUint64(buf[:], uint64(b.Date.Unix()))
			h.Write(buf[:])
			writeF64(b.Open)
			writeF64(b.High)
			writeF64(b.Low)
			writeF64(b.Close)
			writeF64(b.Volume)
			writeF64(b.AdjClose)
		}
	}
	return domain.DatasetHash(fmt.Sprintf("%x", h.Sum(nil)))
}
