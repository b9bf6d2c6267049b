package eod

import (
	"context"
	"errors"
	"fmt"
	"os"

	"stocklog/internal/interfaces"
	"stocklog/internal/tradelog"
	"stocklog/internal/types"
)

var (
	ErrMissingSource = errors.New("data folder does not exist")
	ErrNoDayData     = errors.New("no data for date")
	ErrRowOutOfRange = errors.New("row index out of range")
)

// Summarizer derives trade and day statistics from a data folder. Each
// call re-reads every partition; nothing is cached between calls.
type Summarizer struct {
	reader *tradelog.Reader
}

var _ interfaces.StockLogSummarizer = (*Summarizer)(nil)

type Option func(*tradelog.Reader)

// WithMetadataFile overrides the per-partition file name (metadata.csv).
func WithMetadataFile(name string) Option {
	return func(r *tradelog.Reader) {
		if name != "" {
			r.MetadataFile = name
		}
	}
}

// WithTimeLayouts overrides the layouts tried when parsing the Time column.
func WithTimeLayouts(layouts ...string) Option {
	return func(r *tradelog.Reader) {
		if len(layouts) > 0 {
			r.TimeLayouts = layouts
		}
	}
}

// NewSummarizer fails with ErrMissingSource when root is not a directory.
func NewSummarizer(root string, opts ...Option) (*Summarizer, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%q: %w", root, ErrMissingSource)
	}
	r := tradelog.NewReader(root, "", nil)
	for _, opt := range opts {
		opt(r)
	}
	return &Summarizer{reader: r}, nil
}

func (s *Summarizer) Partitions(ctx context.Context) ([]types.Partition, error) {
	return s.reader.Partitions()
}

// FindDayStats scans every partition and returns the trade table, the day
// table and a diagnostic for each partition that could not be read.
func (s *Summarizer) FindDayStats(ctx context.Context) (types.DayStatsResult, error) {
	parts, err := s.reader.Partitions()
	if err != nil {
		return types.DayStatsResult{}, err
	}

	var res types.DayStatsResult
	var rows []types.LogRow
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return types.DayStatsResult{}, err
		}
		pr, err := s.reader.Load(p)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, types.Diagnostic{
				Partition: p.Name,
				Path:      p.Dir,
				Reason:    err.Error(),
			})
			continue
		}
		rows = append(rows, pr...)
	}

	res.Trades = PairAll(GroupByDate(rows))
	if res.Trades == nil {
		res.Trades = []types.Trade{}
	}
	res.Days = AggregateDays(rows, res.Trades)
	return res, nil
}

// GetDayData returns the rows for date from the first partition, in
// chronological order, that holds any. A date with no data is not an
// error: the result has Found=false and no rows.
func (s *Summarizer) GetDayData(ctx context.Context, date string) (types.DayData, error) {
	dd := types.DayData{Date: date, Rows: []types.LogRow{}}
	parts, err := s.reader.Partitions()
	if err != nil {
		return dd, err
	}
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return dd, err
		}
		rows, err := s.reader.Load(p)
		if err != nil {
			continue
		}
		if on := rowsOn(rows, date); len(on) > 0 {
			dd.Found = true
			dd.Partition = p.Name
			dd.Dir = p.Dir
			dd.Rows = on
			return dd, nil
		}
	}
	return dd, nil
}

// Screenshot resolves the image file referenced by row index of date.
func (s *Summarizer) Screenshot(ctx context.Context, date string, row int) (string, error) {
	dd, err := s.GetDayData(ctx, date)
	if err != nil {
		return "", err
	}
	if !dd.Found {
		return "", fmt.Errorf("%s: %w", date, ErrNoDayData)
	}
	if row < 0 || row >= len(dd.Rows) {
		return "", fmt.Errorf("row %d of %d: %w", row, len(dd.Rows), ErrRowOutOfRange)
	}
	return ResolveScreenshot(dd.Dir, dd.Rows[row].ScreenshotPath)
}

// Compress archives the metadata files of partitions older than cutoff.
func (s *Summarizer) Compress(cutoff string) (int, error) {
	return s.reader.Compress(cutoff)
}
