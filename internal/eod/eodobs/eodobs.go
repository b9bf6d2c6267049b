package eodobs

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"stocklog/internal/eod"
	"stocklog/internal/interfaces"
	"stocklog/internal/logger"
	"stocklog/internal/trace"
	"stocklog/internal/types"
)

type observableSummarizer struct {
	summarizer interfaces.StockLogSummarizer
}

var _ interfaces.StockLogSummarizer = (*observableSummarizer)(nil)

func Wrap(summarizer interfaces.StockLogSummarizer) interfaces.StockLogSummarizer {
	return &observableSummarizer{
		summarizer: summarizer,
	}
}

func (obs *observableSummarizer) FindDayStats(ctx context.Context) (types.DayStatsResult, error) {
	ctx, span := trace.StartSpan(ctx, "eod.FindDayStats")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Scanning partitions for day statistics")

	res, err := obs.summarizer.FindDayStats(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Day statistics scan failed", err)
		return res, err
	}

	for _, d := range res.Diagnostics {
		logger.Skip(ctx, d.Partition, d.Reason, "path", d.Path)
	}
	for _, t := range res.Trades {
		logger.Trade(ctx, t.Date, string(t.Type), t.EntryPrice, t.ExitPrice, t.ProfitLoss)
	}

	span.SetAttributes(
		attribute.Int("days", len(res.Days)),
		attribute.Int("trades", len(res.Trades)),
		attribute.Int("skipped_partitions", len(res.Diagnostics)),
	)
	logger.InfoSkip(ctx, 1, "Day statistics computed",
		"days", len(res.Days),
		"trades", len(res.Trades),
		"skipped_partitions", len(res.Diagnostics),
		"last_date", res.LastDate(),
	)

	return res, nil
}

func (obs *observableSummarizer) GetDayData(ctx context.Context, date string) (types.DayData, error) {
	ctx, span := trace.StartSpan(ctx, "eod.GetDayData")
	defer span.End()
	span.SetAttributes(attribute.String("date", date))

	dd, err := obs.summarizer.GetDayData(ctx, date)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Day data lookup failed", err, "date", date)
		return dd, err
	}

	if !dd.Found {
		logger.InfoSkip(ctx, 1, "No data for date", "date", date)
		return dd, nil
	}

	logger.DebugSkip(ctx, 1, "Day data found",
		"date", date,
		"partition", dd.Partition,
		"rows", len(dd.Rows),
	)
	return dd, nil
}

func (obs *observableSummarizer) Partitions(ctx context.Context) ([]types.Partition, error) {
	ctx, span := trace.StartSpan(ctx, "eod.Partitions")
	defer span.End()

	parts, err := obs.summarizer.Partitions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Listing partitions failed", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Partitions listed", "count", len(parts))
	return parts, nil
}

func (obs *observableSummarizer) Screenshot(ctx context.Context, date string, row int) (string, error) {
	ctx, span := trace.StartSpan(ctx, "eod.Screenshot")
	defer span.End()
	span.SetAttributes(attribute.String("date", date), attribute.Int("row", row))

	p, err := obs.summarizer.Screenshot(ctx, date, row)
	if err != nil {
		// misses are logged below error level
		if isLookupMiss(err) {
			logger.WarnSkip(ctx, 1, "Screenshot not resolved", "date", date, "row", row, "error", err)
		} else {
			logger.ErrorWithErrSkip(ctx, 1, "Screenshot lookup failed", err, "date", date, "row", row)
		}
		return "", err
	}

	logger.DebugSkip(ctx, 1, "Screenshot resolved", "date", date, "row", row, "path", p)
	return p, nil
}

func isLookupMiss(err error) bool {
	return errors.Is(err, eod.ErrScreenshotNotFound) || errors.Is(err, eod.ErrNoDayData) || errors.Is(err, eod.ErrRowOutOfRange)
}
