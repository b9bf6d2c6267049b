package interfaces

import (
	"context"

	"stocklog/internal/types"
)

type StockLogSummarizer interface {
	FindDayStats(ctx context.Context) (types.DayStatsResult, error)
	GetDayData(ctx context.Context, date string) (types.DayData, error)
	Partitions(ctx context.Context) ([]types.Partition, error)
	Screenshot(ctx context.Context, date string, row int) (string, error)
}
