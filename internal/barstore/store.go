// Package barstore reads and writes the canonical Parquet bar store:
// a hive-partitioned directory symbol=XYZ/year=YYYY/*.parquet with a
// fixed schema, sorted strictly ascending by date within
// each symbol. It also performs multi-symbol alignment (void-bar
// insertion) and computes the DatasetHash a run is keyed on.
package barstore

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/trendlaberr"
)

// schemaVersion tags the canonical frame layout; it feeds DatasetHash
// so a schema migration invalidates every cached run.
const schemaVersion = "bars-v1"

// barRow is the on-disk Parquet row. Date is days since the Unix
// epoch with a DATE logical type.
type barRow struct {
	Date     int32   `parquet:"date,date"`
	Open     float64 `parquet:"open"`
	High     float64 `parquet:"high"`
	Low      float64 `parquet:"low"`
	Close    float64 `parquet:"close"`
	Volume   uint64  `parquet:"volume"`
	AdjClose float64 `parquet:"adj_close"`
}

const secondsPerDay = 86400

func dateToDays(t time.Time) int32 {
	return int32(t.UTC().Unix() / secondsPerDay)
}

func daysToDate(d int32) time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

// Store is rooted at one hive-partitioned directory.
type Store struct {
	root string
}

// New opens (or designates) a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// symbolDir is the hive partition for one symbol.
func (s *Store) symbolDir(symbol string) string {
	return filepath.Join(s.root, "symbol="+symbol)
}

// Write persists bars for one symbol, partitioned by year. Existing
// year partitions for that symbol are replaced wholesale.
func (s *Store) Write(symbol string, bars []domain.Bar) error {
	byYear := make(map[int][]barRow)
	var years []int
	for _, b := range bars {
		if b.IsVoid() {
			continue // void bars are an alignment artifact, never persisted
		}
		y := b.Date.UTC().Year()
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], barRow{
			Date:     dateToDays(b.Date),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			Volume:   uint64(b.Volume),
			AdjClose: b.AdjClose,
		})
	}
	sort.Ints(years)

	for _, y := range years {
		dir := filepath.Join(s.symbolDir(symbol), fmt.Sprintf("year=%d", y))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return trendlaberr.Data(symbol, err)
		}
		path := filepath.Join(dir, "data.parquet")
		f, err := os.Create(path)
		if err != nil {
			return trendlaberr.Data(symbol, err)
		}
		w := parquet.NewGenericWriter[barRow](f)
		if _, err := w.Write(byYear[y]); err != nil {
			f.Close()
			return trendlaberr.Data(symbol, fmt.Errorf("writing %s: %w", path, err))
		}
		if err := w.Close(); err != nil {
			f.Close()
			return trendlaberr.Data(symbol, fmt.Errorf("closing %s: %w", path, err))
		}
		if err := f.Close(); err != nil {
			return trendlaberr.Data(symbol, err)
		}
	}
	return nil
}

// Read loads every bar for symbol across all year partitions, sorted
// strictly ascending by date.
func (s *Store) Read(symbol string) ([]domain.Bar, error) {
	pattern := filepath.Join(s.symbolDir(symbol), "year=*", "*.parquet")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, trendlaberr.Data(symbol, err)
	}
	if len(files) == 0 {
		return nil, trendlaberr.Data(symbol, fmt.Errorf("no cached data under %s", s.symbolDir(symbol)))
	}
	sort.Strings(files)

	var bars []domain.Bar
	for _, path := range files {
		rows, err := parquet.ReadFile[barRow](path)
		if err != nil {
			return nil, trendlaberr.Data(symbol, fmt.Errorf("reading %s: %w", path, err))
		}
		for _, r := range rows {
			bars = append(bars, domain.Bar{
				Symbol:   symbol,
				Date:     daysToDate(r.Date),
				Open:     r.Open,
				High:     r.High,
				Low:      r.Low,
				Close:    r.Close,
				Volume:   float64(r.Volume),
				AdjClose: r.AdjClose,
			})
		}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	for i := 1; i < len(bars); i++ {
		if !bars[i-1].Date.Before(bars[i].Date) {
			return nil, trendlaberr.Data(symbol, fmt.Errorf("duplicate or unordered date %s", bars[i].Date.Format("2006-01-02")))
		}
	}
	return bars, nil
}

// ReadRange loads bars for symbol restricted to [start, end]
// inclusive. Zero times disable the respective bound.
func (s *Store) ReadRange(symbol string, start, end time.Time) ([]domain.Bar, error) {
	bars, err := s.Read(symbol)
	if err != nil {
		return nil, err
	}
	var out []domain.Bar
	for _, b := range bars {
		if !start.IsZero() && b.Date.Before(start) {
			continue
		}
		if !end.IsZero() && b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Symbols lists every symbol with at least one partition.
func (s *Store) Symbols() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, trendlaberr.Data("", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && len(e.Name()) > 7 && e.Name()[:7] == "symbol=" {
			out = append(out, e.Name()[7:])
		}
	}
	sort.Strings(out)
	return out, nil
}

// Align builds the union date index across every symbol's series and
// inserts all-NaN void bars where a symbol has no row for a date, so
// every aligned series shares one index.
func Align(bySymbol map[string][]domain.Bar) map[string][]domain.Bar {
	dateSet := make(map[int64]time.Time)
	for _, bars := range bySymbol {
		for _, b := range bars {
			dateSet[b.Date.Unix()] = b.Date
		}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for _, d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	nan := math.NaN()
	aligned := make(map[string][]domain.Bar, len(bySymbol))
	for symbol, bars := range bySymbol {
		byDate := make(map[int64]domain.Bar, len(bars))
		for _, b := range bars {
			byDate[b.Date.Unix()] = b
		}
		series := make([]domain.Bar, 0, len(dates))
		for _, d := range dates {
			if b, ok := byDate[d.Unix()]; ok {
				series = append(series, b)
				continue
			}
			series = append(series, domain.Bar{
				Symbol: symbol, Date: d,
				Open: nan, High: nan, Low: nan, Close: nan,
				Volume: 0, AdjClose: nan,
			})
		}
		aligned[symbol] = series
	}
	return aligned
}
