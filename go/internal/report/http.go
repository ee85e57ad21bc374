package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/elevator/go/clients"
)

// TimesParam is the query parameter carrying the JSON encoded times.
const TimesParam = "times"

// HTTPReporter sends results as a single GET request to a fixed endpoint,
// e.g. a spreadsheet web app. Only the status code is inspected.
type HTTPReporter struct {
	client *clients.BaseClient
}

// NewHTTPReporter creates a reporter for endpoint.
func NewHTTPReporter(endpoint string, timeout time.Duration) *HTTPReporter {
	c := clients.NewBaseClient(endpoint)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetHeader("User-Agent", "elevator-reporter/1.0")
	return &HTTPReporter{client: c}
}

func (r *HTTPReporter) Report(ctx context.Context, _ uuid.UUID, times []float64) error {
	encoded, err := EncodeTimes(times)
	if err != nil {
		return err
	}

	if _, err := r.client.Get(ctx, "", url.Values{TimesParam: {encoded}}); err != nil {
		return fmt.Errorf("send results: %w", err)
	}
	return nil
}

// EncodeTimes renders times as a JSON array. A nil slice encodes as [].
func EncodeTimes(times []float64) (string, error) {
	if times == nil {
		times = []float64{}
	}
	data, err := json.Marshal(times)
	if err != nil {
		return "", fmt.Errorf("marshal times: %w", err)
	}
	return string(data), nil
}
