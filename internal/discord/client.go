package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIBase = "https://discord.com/api/v10"

// Client posts messages to channels through the Discord REST API.
type Client struct {
	http    *http.Client
	token   string
	baseURL string
}

func NewClient(botToken string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   botToken,
		baseURL: defaultAPIBase,
	}
}

// PostMessage sends a message with up to MaxEmbedsPerMessage embeds to a
// channel. Extra embeds are dropped rather than split across calls.
func (c *Client) PostMessage(ctx context.Context, channelID, content string, embeds []Embed) error {
	if len(embeds) > MaxEmbedsPerMessage {
		embeds = embeds[:MaxEmbedsPerMessage]
	}
	payload, err := json.Marshal(MessageData{Content: content, Embeds: embeds})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("POST %s: status %d: %s", url, resp.StatusCode, body)
	}
	return nil
}
