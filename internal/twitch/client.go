package twitch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	defaultOAuthURL = "https://id.twitch.tv/oauth2/token"
	defaultHelixURL = "https://api.twitch.tv/helix"

	maxBodyExcerpt = 256
)

// Client issues authenticated calls against the Twitch API.
type Client struct {
	httpClient   *http.Client
	clientID     string
	clientSecret string
	oauthURL     string // token endpoint, configurable for testing
	helixURL     string // Helix base URL, configurable for testing
}

// NewClient creates a Client for the given application credentials.
func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		httpClient:   &http.Client{},
		clientID:     clientID,
		clientSecret: clientSecret,
		oauthURL:     defaultOAuthURL,
		helixURL:     defaultHelixURL,
	}
}

// Authenticate exchanges the client credentials for an app access token.
// A response that does not parse as a valid credential indicates
// misconfiguration; the caller is expected to abort the run.
func (c *Client) Authenticate(ctx context.Context) (Credential, error) {
	data := url.Values{}
	data.Set("client_id", c.clientID)
	data.Set("client_secret", c.clientSecret)
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL, strings.NewReader(data.Encode()))
	if err != nil {
		return Credential{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Credential{}, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Credential{}, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, excerpt(body))
	}

	var cred Credential
	if err := json.Unmarshal(body, &cred); err != nil {
		return Credential{}, fmt.Errorf("decode token response: %w (body: %s)", err, excerpt(body))
	}
	if cred.AccessToken == "" {
		return Credential{}, fmt.Errorf("token response carries no access_token: %s", excerpt(body))
	}
	return cred, nil
}

// GetStreamsByLogin fetches the currently live broadcasts for a user login.
// Typically zero or one entries, but the Helix schema allows several.
func (c *Client) GetStreamsByLogin(ctx context.Context, cred Credential, login string) (StreamList, error) {
	var list StreamList
	endpoint := c.helixURL + "/streams?user_login=" + url.QueryEscape(login)
	if err := c.getJSON(ctx, cred, endpoint, &list); err != nil {
		return StreamList{}, err
	}
	return list, nil
}

// GetUsersByLogin looks up a user profile by login.
func (c *Client) GetUsersByLogin(ctx context.Context, cred Credential, login string) (UserList, error) {
	var list UserList
	endpoint := c.helixURL + "/users?login=" + url.QueryEscape(login)
	if err := c.getJSON(ctx, cred, endpoint, &list); err != nil {
		return UserList{}, err
	}
	return list, nil
}

// getJSON performs an authenticated Helix GET and decodes the body into out.
// Failures map onto the TransportError/ParseError taxonomy.
func (c *Client) getJSON(ctx context.Context, cred Credential, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &TransportError{Status: resp.StatusCode, Err: errors.New(excerpt(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Err: err, Body: excerpt(body)}
	}
	return nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyExcerpt {
		return s[:maxBodyExcerpt] + "..."
	}
	return s
}
