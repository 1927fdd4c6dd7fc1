// Package discord builds and delivers new-broadcast announcements to a
// Discord webhook.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/kozakura913/TwitchLiveDiscord/internal/twitch"
)

const (
	announceMessage = "A live broadcast has started"
	unknownTitle    = "unknown title"
)

// Embed mirrors the Discord webhook embed object.
type Embed struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	URL         string      `json:"url,omitempty"`
	Timestamp   *time.Time  `json:"timestamp,omitempty"`
	Color       int         `json:"color,omitempty"`
	Image       *EmbedImage `json:"image,omitempty"`
	Thumbnail   *EmbedImage `json:"thumbnail,omitempty"`
}

// EmbedImage is an image reference inside an embed.
type EmbedImage struct {
	URL string `json:"url"`
}

type webhookBody struct {
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content"`
	Embeds    []Embed `json:"embeds"`
}

// WebhookClient posts announcements to a single Discord webhook URL.
type WebhookClient struct {
	httpClient       *http.Client
	url              string
	thumbnailTimeout time.Duration // per-fetch bound, configurable for testing
}

// NewWebhookClient creates a client for the given webhook URL.
func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		httpClient:       &http.Client{},
		url:              webhookURL,
		thumbnailTimeout: 5 * time.Second,
	}
}

// BuildEmbeds renders one embed per broadcast. The title falls back from the
// stream title to the game name to a placeholder when the platform supplied
// neither; the deep link is derived from the user login.
func BuildEmbeds(streams []twitch.Stream) []Embed {
	embeds := make([]Embed, 0, len(streams))
	for _, s := range streams {
		title := s.Title
		if title == "" {
			title = s.GameName
		}
		if title == "" {
			title = unknownTitle
		}

		started := s.StartedAt
		e := Embed{
			Title:       title,
			Description: s.GameName,
			URL:         "https://www.twitch.tv/" + s.UserLogin,
			Timestamp:   &started,
		}
		if s.ThumbnailURL != "" {
			e.Image = &EmbedImage{URL: ThumbnailImageURL(s.ThumbnailURL)}
		}
		embeds = append(embeds, e)
	}
	return embeds
}

// ThumbnailImageURL resolves a Helix thumbnail URL template to the platform's
// default image size by zeroing the width and height placeholders.
func ThumbnailImageURL(template string) string {
	return strings.NewReplacer("{width}", "0", "{height}", "0").Replace(template)
}

// AttachmentFilename derives the upload filename for a broadcast's thumbnail:
// the broadcast ID plus the extension of the thumbnail URL, defaulting to jpg.
func AttachmentFilename(s twitch.Stream) string {
	ext := ""
	if u, err := url.Parse(s.ThumbnailURL); err == nil {
		ext = strings.TrimPrefix(path.Ext(u.Path), ".")
	}
	if ext == "" {
		ext = "jpg"
	}
	return s.ID + "." + ext
}

// Send announces the given broadcasts. An empty list sends nothing. When
// thumbnail bytes are available the message goes out as multipart with one
// file part per broadcast; otherwise as a plain JSON body.
func (c *WebhookClient) Send(ctx context.Context, streams []twitch.Stream, thumbs map[string][]byte) error {
	if len(streams) == 0 {
		return nil
	}

	embeds := BuildEmbeds(streams)
	if len(thumbs) == 0 {
		return c.sendJSON(ctx, webhookBody{Content: announceMessage, Embeds: embeds})
	}
	return c.sendMultipart(ctx, streams, embeds, thumbs)
}

func (c *WebhookClient) sendJSON(ctx context.Context, body webhookBody) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// sendMultipart uploads the fetched images alongside a payload_json part, with
// each embed's image URL rewritten to reference its attachment by filename.
func (c *WebhookClient) sendMultipart(ctx context.Context, streams []twitch.Stream, embeds []Embed, thumbs map[string][]byte) error {
	for i, s := range streams {
		if _, ok := thumbs[s.ID]; !ok {
			continue
		}
		embeds[i].Image = &EmbedImage{URL: "attachment://" + AttachmentFilename(s)}
	}

	payload, err := json.Marshal(webhookBody{Content: announceMessage, Embeds: embeds})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("payload_json", string(payload)); err != nil {
		return fmt.Errorf("write payload part: %w", err)
	}
	for i, s := range streams {
		img, ok := thumbs[s.ID]
		if !ok {
			continue
		}
		part, err := w.CreateFormFile(fmt.Sprintf("files[%d]", i), AttachmentFilename(s))
		if err != nil {
			return fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(img); err != nil {
			return fmt.Errorf("write file part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req)
}

func (c *WebhookClient) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
