package api

import (
	"context"
	"net/http"

	"stocklog/internal/interfaces"
	"stocklog/internal/types"
)

// RemoteSummarizer answers summarizer queries from a running server.
type RemoteSummarizer struct {
	client *Client
}

var _ interfaces.StockLogSummarizer = (*RemoteSummarizer)(nil)

func NewRemoteSummarizer(c *Client) *RemoteSummarizer {
	return &RemoteSummarizer{client: c}
}

func (r *RemoteSummarizer) FindDayStats(ctx context.Context) (types.DayStatsResult, error) {
	return r.client.DayStatsResult(ctx)
}

func (r *RemoteSummarizer) GetDayData(ctx context.Context, date string) (types.DayData, error) {
	return r.client.DayData(ctx, date)
}

func (r *RemoteSummarizer) Partitions(ctx context.Context) ([]types.Partition, error) {
	return r.client.Partitions(ctx)
}

// Screenshot checks that the server can resolve the image and returns its
// URL instead of a local path.
func (r *RemoteSummarizer) Screenshot(ctx context.Context, date string, row int) (string, error) {
	if _, err := r.client.Do(ctx, http.MethodHead, screenshotPath(date, row)); err != nil {
		return "", err
	}
	return r.client.ScreenshotURL(date, row), nil
}
