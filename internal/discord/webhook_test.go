package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kozakura913/TwitchLiveDiscord/internal/twitch"
)

func TestBuildEmbeds_TitleFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		gameName string
		want     string
	}{
		{"explicit title wins", "Speedrun Sunday", "Celeste", "Speedrun Sunday"},
		{"game name when no title", "", "Celeste", "Celeste"},
		{"placeholder when neither", "", "", "unknown title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embeds := BuildEmbeds([]twitch.Stream{{
				ID:        "1",
				UserLogin: "somestreamer",
				Title:     tt.title,
				GameName:  tt.gameName,
			}})

			require.Len(t, embeds, 1)
			assert.Equal(t, tt.want, embeds[0].Title)
		})
	}
}

func TestBuildEmbeds_LinkAndTimestamp(t *testing.T) {
	started := time.Date(2021, 3, 10, 3, 18, 11, 0, time.UTC)
	embeds := BuildEmbeds([]twitch.Stream{{
		ID:           "1",
		UserLogin:    "somestreamer",
		Title:        "hi",
		GameName:     "Celeste",
		StartedAt:    started,
		ThumbnailURL: "https://cdn.example/live_user_somestreamer-{width}x{height}.jpg",
	}})

	require.Len(t, embeds, 1)
	assert.Equal(t, "https://www.twitch.tv/somestreamer", embeds[0].URL)
	assert.Equal(t, "Celeste", embeds[0].Description)
	require.NotNil(t, embeds[0].Timestamp)
	assert.Equal(t, started, *embeds[0].Timestamp)
	require.NotNil(t, embeds[0].Image)
	assert.Equal(t, "https://cdn.example/live_user_somestreamer-0x0.jpg", embeds[0].Image.URL)
}

func TestBuildEmbeds_NoThumbnailNoImage(t *testing.T) {
	embeds := BuildEmbeds([]twitch.Stream{{ID: "1", UserLogin: "somestreamer", Title: "hi"}})

	require.Len(t, embeds, 1)
	assert.Nil(t, embeds[0].Image)
}

func TestThumbnailImageURL(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"both tokens", "https://cdn.example/a-{width}x{height}.jpg", "https://cdn.example/a-0x0.jpg"},
		{"one token", "https://cdn.example/a-{width}.jpg", "https://cdn.example/a-0.jpg"},
		{"no tokens", "https://cdn.example/a.jpg", "https://cdn.example/a.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ThumbnailImageURL(tt.template))
		})
	}
}

func TestAttachmentFilename(t *testing.T) {
	tests := []struct {
		name   string
		stream twitch.Stream
		want   string
	}{
		{
			"extension from url",
			twitch.Stream{ID: "42", ThumbnailURL: "https://cdn.example/a-{width}x{height}.png"},
			"42.png",
		},
		{
			"default jpg when no extension",
			twitch.Stream{ID: "42", ThumbnailURL: "https://cdn.example/thumbnail"},
			"42.jpg",
		},
		{
			"default jpg when no url",
			twitch.Stream{ID: "42"},
			"42.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AttachmentFilename(tt.stream))
		})
	}
}

func TestSend_EmptyListSendsNothing(t *testing.T) {
	var calls atomic.Int32
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer mockServer.Close()

	c := NewWebhookClient(mockServer.URL)

	err := c.Send(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSend_PlainJSON(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer mockServer.Close()

	c := NewWebhookClient(mockServer.URL)
	streams := []twitch.Stream{{ID: "1", UserLogin: "somestreamer", Title: "hi"}}

	err := c.Send(context.Background(), streams, nil)

	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)

	var body struct {
		Content string  `json:"content"`
		Embeds  []Embed `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &body))
	assert.NotEmpty(t, body.Content)
	require.Len(t, body.Embeds, 1)
	assert.Equal(t, "hi", body.Embeds[0].Title)
}

func TestSend_MultipartWithThumbnails(t *testing.T) {
	var gotPayload string
	var gotFiles map[string][]byte
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPayload = r.FormValue("payload_json")

		gotFiles = map[string][]byte{}
		for _, headers := range r.MultipartForm.File {
			for _, h := range headers {
				f, err := h.Open()
				require.NoError(t, err)
				data, err := io.ReadAll(f)
				require.NoError(t, err)
				f.Close()
				gotFiles[h.Filename] = data
			}
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer mockServer.Close()

	c := NewWebhookClient(mockServer.URL)
	streams := []twitch.Stream{{
		ID:           "42",
		UserLogin:    "somestreamer",
		Title:        "hi",
		ThumbnailURL: "https://cdn.example/a-{width}x{height}.jpg",
	}}
	thumbs := map[string][]byte{"42": []byte("imagebytes")}

	err := c.Send(context.Background(), streams, thumbs)

	require.NoError(t, err)

	var body struct {
		Embeds []Embed `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal([]byte(gotPayload), &body))
	require.Len(t, body.Embeds, 1)
	require.NotNil(t, body.Embeds[0].Image)
	assert.Equal(t, "attachment://42.jpg", body.Embeds[0].Image.URL)

	assert.Equal(t, []byte("imagebytes"), gotFiles["42.jpg"])
}

func TestSend_MultipartSkipsMissingThumb(t *testing.T) {
	var gotPayload string
	var fileCount int
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPayload = r.FormValue("payload_json")
		for _, headers := range r.MultipartForm.File {
			fileCount += len(headers)
		}
	}))
	defer mockServer.Close()

	c := NewWebhookClient(mockServer.URL)
	streams := []twitch.Stream{
		{ID: "1", UserLogin: "a", Title: "first", ThumbnailURL: "https://cdn.example/1-{width}x{height}.jpg"},
		{ID: "2", UserLogin: "b", Title: "second", ThumbnailURL: "https://cdn.example/2-{width}x{height}.jpg"},
	}
	thumbs := map[string][]byte{"2": []byte("img2")}

	err := c.Send(context.Background(), streams, thumbs)

	require.NoError(t, err)
	assert.Equal(t, 1, fileCount)

	var body struct {
		Embeds []Embed `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal([]byte(gotPayload), &body))
	require.Len(t, body.Embeds, 2)
	assert.Equal(t, "https://cdn.example/1-0x0.jpg", body.Embeds[0].Image.URL, "embed without fetched bytes keeps the remote url")
	assert.Equal(t, "attachment://2.jpg", body.Embeds[1].Image.URL)
}

func TestSend_WebhookRejects(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "Cannot send an empty message"}`))
	}))
	defer mockServer.Close()

	c := NewWebhookClient(mockServer.URL)

	err := c.Send(context.Background(), []twitch.Stream{{ID: "1", UserLogin: "a", Title: "x"}}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
