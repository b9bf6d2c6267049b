package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"stocklog/internal/calendar"
	"stocklog/internal/types"
)

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.GET(ctx, path)
	if err != nil {
		return err
	}
	return resp.ParseJSON(v)
}

func (c *Client) Partitions(ctx context.Context) ([]types.Partition, error) {
	var parts []types.Partition
	if err := c.getJSON(ctx, "/api/partitions", &parts); err != nil {
		return nil, err
	}
	return parts, nil
}

func (c *Client) Calendar(ctx context.Context) (calendar.Calendar, error) {
	var cal calendar.Calendar
	err := c.getJSON(ctx, "/api/calendar", &cal)
	return cal, err
}

// DayStatsResult fetches both tables and the diagnostics from a single
// server scan.
func (c *Client) DayStatsResult(ctx context.Context) (types.DayStatsResult, error) {
	var res types.DayStatsResult
	err := c.getJSON(ctx, "/api/stats", &res)
	return res, err
}

// DayData mirrors the local lookup: a date without data is reported with
// Found=false rather than as an error.
func (c *Client) DayData(ctx context.Context, date string) (types.DayData, error) {
	dd := types.DayData{Date: date, Rows: []types.LogRow{}}
	err := c.getJSON(ctx, "/api/days/"+url.PathEscape(date), &dd)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return types.DayData{Date: date, Rows: []types.LogRow{}}, nil
	}
	return dd, err
}

func screenshotPath(date string, row int) string {
	return "/api/days/" + url.PathEscape(date) + "/rows/" + strconv.Itoa(row) + "/screenshot"
}

// ScreenshotURL is the address of the image for row of date.
func (c *Client) ScreenshotURL(date string, row int) string {
	return c.baseURL + screenshotPath(date, row)
}
