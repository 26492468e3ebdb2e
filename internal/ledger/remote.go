package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"SignalSentinel/internal/model"
)

// RemoteLedger reads and replaces the alert ledger held by an HTTP endpoint.
// GET returns the JSON array; POST with a bearer token stores a new one.
type RemoteLedger struct {
	URL    string
	Token  string
	Client *http.Client
}

func NewRemoteLedger(url, token string, timeout time.Duration) *RemoteLedger {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteLedger{URL: url, Token: token, Client: &http.Client{Timeout: timeout}}
}

func (l *RemoteLedger) Name() string { return "remote" }

func (l *RemoteLedger) Load(ctx context.Context) ([]model.AlertRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL, nil)
	if err != nil {
		return nil, err
	}
	l.authorize(req)
	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return []model.AlertRecord{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("load alerts: status %d", resp.StatusCode)
	}
	var records []model.AlertRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	return records, nil
}

func (l *RemoteLedger) Save(ctx context.Context, records []model.AlertRecord) error {
	if records == nil {
		records = []model.AlertRecord{}
	}
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal alerts: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	l.authorize(req)

	resp, err := l.Client.Do(req)
	if err != nil {
		return fmt.Errorf("save alerts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("save alerts: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (l *RemoteLedger) authorize(req *http.Request) {
	if l.Token != "" {
		req.Header.Set("Authorization", "Bearer "+l.Token)
	}
}
