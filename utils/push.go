package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PushSender delivers notifications through an Expo-compatible push gateway.
type PushSender struct {
	url    string
	client *http.Client
}

// NewPushSender builds a sender targeting the given gateway URL.
func NewPushSender(url string) *PushSender {
	return &PushSender{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type pushMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
	Sound string `json:"sound"`
}

// Send posts a single notification. A non-2xx response is an error; the
// caller decides whether that matters (for notifications it never does).
func (s *PushSender) Send(token, title, body string) error {
	payload, err := json.Marshal(pushMessage{
		To:    token,
		Title: title,
		Body:  body,
		Sound: "default",
	})
	if err != nil {
		return err
	}

	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, msg)
	}
	return nil
}
