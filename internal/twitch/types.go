package twitch

import "time"

// Credential is an app access token obtained from the client-credentials
// grant. It is persisted between runs so a subsequent invocation can skip
// re-authentication.
type Credential struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Stream is one active broadcast as returned by the Helix streams endpoint.
// ID is stable only for the lifetime of a single continuous broadcast; the
// same user going live again gets a new ID.
type Stream struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserLogin    string    `json:"user_login"`
	UserName     string    `json:"user_name,omitempty"`
	GameID       string    `json:"game_id,omitempty"`
	GameName     string    `json:"game_name,omitempty"`
	Type         string    `json:"type"`
	Title        string    `json:"title,omitempty"`
	ViewerCount  int64     `json:"viewer_count"`
	StartedAt    time.Time `json:"started_at"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	IsMature     bool      `json:"is_mature"`
}

// StreamList mirrors the Helix `{"data": [...]}` response envelope.
type StreamList struct {
	Data []Stream `json:"data"`
}

// User is a Helix user profile.
type User struct {
	ID              string    `json:"id"`
	Login           string    `json:"login"`
	DisplayName     string    `json:"display_name,omitempty"`
	Type            string    `json:"type,omitempty"`
	BroadcasterType string    `json:"broadcaster_type,omitempty"`
	Description     string    `json:"description,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	OfflineImageURL string    `json:"offline_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// UserList mirrors the Helix `{"data": [...]}` response envelope.
type UserList struct {
	Data []User `json:"data"`
}
