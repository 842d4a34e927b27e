package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ricknaldos/buzentry-main-sub001/internal/domain"
)

// Forwarder delivers access events to an external webhook URL. Delivery is
// best-effort: the caller logs and swallows any error, and the local ledger
// write is never rolled back.
type Forwarder struct {
	url        string
	httpClient *http.Client
}

func NewForwarder(url string) *Forwarder {
	return &Forwarder{
		url:        url,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Forward posts the event as JSON. No-op when no URL is configured.
func (f *Forwarder) Forward(ctx context.Context, ev *domain.AccessEvent) error {
	if f == nil || f.url == "" {
		return nil
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}
