// Package mattermost provides webhook client for sending notifications to Mattermost.
package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aimd54/swachhta-hub/internal/config"
	"github.com/aimd54/swachhta-hub/internal/models"
	"github.com/aimd54/swachhta-hub/pkg/logger"
)

const botUsername = "Swachhta Hub"

// Client handles Mattermost webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new Mattermost client.
func NewClient(cfg *config.MattermostConfig, log *logger.Logger) *Client {
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Message represents a Mattermost message payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Pretext  string  `json:"pretext,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
	Footer   string  `json:"footer,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// SendMessage sends a message to Mattermost.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Mattermost is disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = botUsername
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message to Mattermost: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mattermost returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent message to Mattermost")

	return nil
}

// NotifyBadgeEarned announces a newly earned badge.
func (c *Client) NotifyBadgeEarned(ctx context.Context, user *models.User, badge *models.Badge) error {
	return c.SendMessage(ctx, &Message{
		Text: fmt.Sprintf("🏅 **%s** from %s earned the **%s** badge!", user.Name, user.City, badge.Name),
		Attachments: []Attachment{{
			Fallback: fmt.Sprintf("%s earned %s", user.Name, badge.Name),
			Color:    "#2e7d32",
			Text:     badge.Description,
			Fields: []Field{
				{Short: true, Title: "Green Points", Value: fmt.Sprintf("%d", user.Points)},
				{Short: true, Title: "Level", Value: fmt.Sprintf("%d", user.Level)},
			},
		}},
	})
}

// NotifyCertificateUnlocked announces that a user became eligible for the certificate.
func (c *Client) NotifyCertificateUnlocked(ctx context.Context, user *models.User) error {
	return c.SendMessage(ctx, &Message{
		Text: fmt.Sprintf("🎓 **%s** from %s unlocked the Swachhta Champion certificate with %d Green Points!",
			user.Name, user.City, user.Points),
	})
}
