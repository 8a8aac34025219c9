package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"platwatch/internal/domain"
)

const pushoverURL = "https://api.pushover.net/1/messages.json"

// PushoverSink delivers alerts as Pushover push messages.
type PushoverSink struct {
	token      string
	user       string
	apiURL     string
	httpClient *http.Client
}

// NewPushoverSink creates a sink for the given application and user keys.
func NewPushoverSink(token, user string) *PushoverSink {
	return &PushoverSink{
		token:  token,
		user:   user,
		apiURL: pushoverURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Deliver posts one message per alert.
func (s *PushoverSink) Deliver(ctx context.Context, alert domain.Alert) error {
	type message struct {
		Token     string `json:"token"`
		User      string `json:"user"`
		Message   string `json:"message"`
		Timestamp int64  `json:"timestamp"`
	}
	m := &message{
		Token:     s.token,
		User:      s.user,
		Timestamp: alert.At.Unix(),
		Message: fmt.Sprintf("%s: %s order %dp x%d from %s",
			alert.ItemName, alert.Order.Type, alert.Order.Platinum,
			alert.Order.Quantity, alert.Order.Trader),
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(m); err != nil {
		return fmt.Errorf("could not json-encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, &body)
	if err != nil {
		return fmt.Errorf("could not create post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not perform post request: %w", err)
	}
	defer resp.Body.Close()

	type response struct {
		Status  int      `json:"status"`
		Request string   `json:"request"`
		Errors  []string `json:"errors"`
	}
	r := new(response)
	if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
		return fmt.Errorf("could not json-decode response for http-status %d: %w", resp.StatusCode, err)
	}
	if r.Status != 1 {
		if len(r.Errors) != 0 {
			return fmt.Errorf("send failed with http-status %d and error: %w", resp.StatusCode, errors.New(r.Errors[0]))
		}
		return fmt.Errorf("send failed with http-status %d and zero response-status code (%#v)", resp.StatusCode, *r)
	}
	return nil
}
