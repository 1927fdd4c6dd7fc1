package discord

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/kozakura913/TwitchLiveDiscord/internal/twitch"
)

// FetchThumbnails downloads the thumbnail image for each broadcast that has
// one. Fetches fan out concurrently, each bounded by the client's thumbnail
// timeout, and every goroutine writes a disjoint slot. A failed or timed-out
// fetch drops that broadcast's entry; a missing thumbnail degrades the
// notification, it never blocks it.
func (c *WebhookClient) FetchThumbnails(ctx context.Context, streams []twitch.Stream) map[string][]byte {
	results := make([][]byte, len(streams))

	var g errgroup.Group
	for i, s := range streams {
		i, s := i, s
		if s.ThumbnailURL == "" {
			continue
		}
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, c.thumbnailTimeout)
			defer cancel()

			img, err := c.fetchImage(fetchCtx, ThumbnailImageURL(s.ThumbnailURL))
			if err != nil {
				slog.Warn("Thumbnail fetch failed, announcing without image", "stream_id", s.ID, "error", err)
				return nil
			}
			results[i] = img
			return nil
		})
	}
	_ = g.Wait()

	thumbs := make(map[string][]byte, len(streams))
	for i, s := range streams {
		if results[i] != nil {
			thumbs[s.ID] = results[i]
		}
	}
	return thumbs
}

func (c *WebhookClient) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	return img, nil
}
