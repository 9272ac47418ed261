package dataprovider

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// CSVDir serves bars from a directory of <SYMBOL>.csv exports with a
// date,open,high,low,close,volume,adj_close header row. It is the
// ingest path the download command uses to seed the Parquet store
// without a network dependency.
type CSVDir struct {
	Dir string
}

func NewCSVDir(dir string) *CSVDir { return &CSVDir{Dir: dir} }

func (p *CSVDir) Name() string { return "csv_dir" }

func (p *CSVDir) Fetch(ctx context.Context, symbol string, start, end time.Time) (*FetchResult, error) {
	path := filepath.Join(p.Dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSymbolNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheError, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no header", ErrResponseFormatChanged, path)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close", "volume", "adj_close"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: %s missing column %q", ErrResponseFormatChanged, path, required)
		}
	}

	var bars []domain.Bar
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResponseFormatChanged, err)
		}
		date, err := time.Parse("2006-01-02", record[col["date"]])
		if err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrValidationError, record[col["date"]])
		}
		if !start.IsZero() && date.Before(start) {
			continue
		}
		if !end.IsZero() && date.After(end) {
			continue
		}
		bar := domain.Bar{Symbol: symbol, Date: date.UTC()}
		for _, field := range []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open}, {"high", &bar.High}, {"low", &bar.Low},
			{"close", &bar.Close}, {"volume", &bar.Volume}, {"adj_close", &bar.AdjClose},
		} {
			v, err := strconv.ParseFloat(record[col[field.name]], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad %s %q on %s", ErrValidationError, field.name, record[col[field.name]], record[col["date"]])
			}
			*field.dst = v
		}
		if bar.High < bar.Low {
			return nil, fmt.Errorf("%w: high %.4f below low %.4f on %s", ErrValidationError, bar.High, bar.Low, record[col["date"]])
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, &NoCachedDataError{Symbol: symbol}
	}
	return &FetchResult{Symbol: symbol, Bars: bars}, nil
}
