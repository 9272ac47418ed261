package barstore

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trendlab-go/trendlab/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func bar(symbol string, d int, close float64) domain.Bar {
	return domain.Bar{
		Symbol: symbol, Date: day(d),
		Open: close - 1, High: close + 1, Low: close - 2, Close: close,
		Volume: 1000, AdjClose: close,
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	in := []domain.Bar{bar("AAA", 0, 100), bar("AAA", 1, 101), bar("AAA", 370, 105)}
	require.NoError(t, store.Write("AAA", in))

	out, err := store.Read("AAA")
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i := range in {
		require.True(t, in[i].Date.Equal(out[i].Date))
		require.InDelta(t, in[i].Close, out[i].Close, 1e-10)
		require.InDelta(t, in[i].Volume, out[i].Volume, 1e-10)
	}

	symbols, err := store.Symbols()
	require.NoError(t, err)
	require.Equal(t, []string{"AAA"}, symbols)
}

func TestReadMissingSymbol(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Read("NOPE")
	require.Error(t, err)
}

func TestReadRangeBounds(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.Write("AAA", []domain.Bar{
		bar("AAA", 0, 100), bar("AAA", 1, 101), bar("AAA", 2, 102), bar("AAA", 3, 103),
	}))
	out, err := store.ReadRange("AAA", day(1), day(2))
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.True(t, out[0].Date.Equal(day(1)))
}

// Alignment inserts void bars on the union of dates.
func TestAlignInsertsVoidBars(t *testing.T) {
	aligned := Align(map[string][]domain.Bar{
		"AAA": {bar("AAA", 0, 100), bar("AAA", 1, 101), bar("AAA", 2, 102)},
		"BBB": {bar("BBB", 0, 50), bar("BBB", 2, 52)},
	})

	require.Len(t, aligned["AAA"], 3)
	require.Len(t, aligned["BBB"], 3)

	require.False(t, aligned["BBB"][0].IsVoid())
	require.True(t, aligned["BBB"][1].IsVoid())
	require.True(t, aligned["BBB"][1].Date.Equal(day(1)))
	require.False(t, aligned["BBB"][2].IsVoid())
	require.True(t, math.IsNaN(aligned["BBB"][1].Close))
}

func TestDatasetHashDeterministicAndSensitive(t *testing.T) {
	frames := func() map[string][]domain.Bar {
		return map[string][]domain.Bar{
			"AAA": {bar("AAA", 0, 100), bar("AAA", 1, 101)},
			"BBB": {bar("BBB", 0, 50), bar("BBB", 1, 51)},
		}
	}
	a := DatasetHash(frames())
	b := DatasetHash(frames())
	require.Equal(t, a, b)

	mutated := frames()
	mutated["AAA"][0].Close = 999
	require.NotEqual(t, a, DatasetHash(mutated))

	taller := frames()
	taller["AAA"] = append(taller["AAA"], bar("AAA", 2, 102))
	require.NotEqual(t, a, DatasetHash(taller))
}
