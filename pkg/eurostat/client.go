// Package eurostat fetches statistical datasets from the Eurostat SDMX
// dissemination API and reshapes them for the bulk loader.
package eurostat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/wifor-platform/statstore/pkg/config"
	"github.com/wifor-platform/statstore/pkg/loader"
	"github.com/wifor-platform/statstore/pkg/retry"
)

// Client talks to the Eurostat dissemination API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	retryCfg   *retry.Config
}

// NewClient creates a Client from the eurostat configuration section.
func NewClient(cfg config.EurostatConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("eurostat"),
		retryCfg:   retry.DefaultConfig(),
	}
}

// Dataset downloads one dataset in TSV form and returns it wide: the
// combined dimension columns followed by one column per reporting period.
func (c *Client) Dataset(ctx context.Context, code string) (*loader.Dataset, error) {
	url := fmt.Sprintf("%s/data/%s?format=TSV&compressed=false", c.baseURL, code)
	c.logger.Info("fetching dataset", zap.String("code", code))

	body, err := retry.DoWithResultIfRetryable(ctx, c.retryCfg, func() ([]byte, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch dataset %q: %w", code, err)
	}

	ds, err := ParseTSV(body)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %q: %w", code, err)
	}
	c.logger.Info("dataset fetched",
		zap.String("code", code),
		zap.Int("rows", len(ds.Rows)),
		zap.Int("columns", len(ds.Columns)))
	return ds, nil
}

// LongDataset downloads a dataset and reshapes it to long form: one row per
// (dimension combination, year), with the year parsed into a date.
func (c *Client) LongDataset(ctx context.Context, code string, idVars []string, valueName string) (*loader.Dataset, error) {
	wide, err := c.Dataset(ctx, code)
	if err != nil {
		return nil, err
	}
	long, err := Melt(wide, idVars, "year", valueName)
	if err != nil {
		return nil, fmt.Errorf("melt dataset %q: %w", code, err)
	}
	if err := ParseYearColumn(long, "year"); err != nil {
		return nil, fmt.Errorf("dataset %q: %w", code, err)
	}
	return long, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}
