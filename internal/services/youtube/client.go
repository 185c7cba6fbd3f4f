package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"pulpit/internal/config"
)

const (
	defaultTokenURL  = "https://oauth2.googleapis.com/token"
	defaultUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos"

	defaultCategoryID   = "22"
	defaultPrivacy      = "public"
	defaultChunkSizeMiB = 8

	// Resumable uploads require chunk sizes in multiples of 256 KiB.
	chunkAlignment = 256 * 1024
)

// HTTPDoer describes the HTTP client used by the YouTube service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client uploads finished sermon videos through the YouTube Data API using
// the resumable upload protocol.
type Client struct {
	tokenURL     string
	uploadURL    string
	clientID     string
	clientSecret string
	refreshToken string
	categoryID   string
	privacy      string
	tags         []string
	chunkSize    int64
	client       HTTPDoer

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// Option customises a Client, primarily for tests.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// WithEndpoints overrides the token and upload URLs.
func WithEndpoints(tokenURL, uploadURL string) Option {
	return func(c *Client) {
		if tokenURL != "" {
			c.tokenURL = tokenURL
		}
		if uploadURL != "" {
			c.uploadURL = uploadURL
		}
	}
}

// NewClient builds an upload client from configuration.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	clientID := strings.TrimSpace(cfg.YouTube.ClientID)
	clientSecret := strings.TrimSpace(cfg.YouTube.ClientSecret)
	refreshToken := strings.TrimSpace(cfg.YouTube.RefreshToken)
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, errors.New("youtube client id, secret, and refresh token are required")
	}

	categoryID := strings.TrimSpace(cfg.YouTube.CategoryID)
	if categoryID == "" {
		categoryID = defaultCategoryID
	}
	privacy := strings.TrimSpace(cfg.YouTube.Privacy)
	if privacy == "" {
		privacy = defaultPrivacy
	}
	chunkMiB := cfg.YouTube.ChunkSizeMiB
	if chunkMiB <= 0 {
		chunkMiB = defaultChunkSizeMiB
	}
	chunkSize := int64(chunkMiB) * 1024 * 1024
	if remainder := chunkSize % chunkAlignment; remainder != 0 {
		chunkSize -= remainder
	}
	if chunkSize < chunkAlignment {
		chunkSize = chunkAlignment
	}

	client := &Client{
		tokenURL:     defaultTokenURL,
		uploadURL:    defaultUploadURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		categoryID:   categoryID,
		privacy:      privacy,
		tags:         append([]string(nil), cfg.YouTube.Tags...),
		chunkSize:    chunkSize,
		client:       &http.Client{Timeout: 10 * time.Minute},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Video describes the metadata attached to an upload.
type Video struct {
	Title       string
	Description string
	Tags        []string
}

// Result describes a completed upload.
type Result struct {
	VideoID  string
	VideoURL string
}

type videoResource struct {
	Snippet struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Tags        []string `json:"tags,omitempty"`
		CategoryID  string   `json:"categoryId"`
	} `json:"snippet"`
	Status struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
}

// Upload sends the video at path to YouTube and returns the new video ID.
// Uploads are resumable: each chunk is sent with a Content-Range header and
// a 308 response advances to the next chunk.
func (c *Client) Upload(ctx context.Context, path string, video Video) (*Result, error) {
	if strings.TrimSpace(video.Title) == "" {
		return nil, errors.New("video title is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat video file: %w", err)
	}
	if info.Size() == 0 {
		return nil, errors.New("video file is empty")
	}

	token, err := c.accessTokenLocked(ctx)
	if err != nil {
		return nil, err
	}
	sessionURL, err := c.startSession(ctx, token, video, info.Size())
	if err != nil {
		return nil, err
	}
	videoID, err := c.uploadChunks(ctx, token, sessionURL, path, info.Size())
	if err != nil {
		return nil, err
	}
	return &Result{
		VideoID:  videoID,
		VideoURL: "https://youtu.be/" + videoID,
	}, nil
}

// startSession requests a resumable upload session and returns its URL.
func (c *Client) startSession(ctx context.Context, token string, video Video, size int64) (string, error) {
	resource := videoResource{}
	resource.Snippet.Title = video.Title
	resource.Snippet.Description = video.Description
	resource.Snippet.CategoryID = c.categoryID
	resource.Snippet.Tags = video.Tags
	if len(resource.Snippet.Tags) == 0 {
		resource.Snippet.Tags = c.tags
	}
	resource.Status.PrivacyStatus = c.privacy

	payload, err := json.Marshal(resource)
	if err != nil {
		return "", fmt.Errorf("encode video resource: %w", err)
	}

	endpoint := c.uploadURL + "?uploadType=resumable&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-Upload-Content-Type", "video/mp4")
	req.Header.Set("X-Upload-Content-Length", strconv.FormatInt(size, 10))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("start upload session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError("start upload session", resp)
	}
	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", errors.New("upload session response missing Location header")
	}
	return sessionURL, nil
}

// uploadChunks streams the file to the session URL one chunk at a time.
func (c *Client) uploadChunks(ctx context.Context, token, sessionURL, path string, size int64) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer file.Close()

	offset := int64(0)
	buf := make([]byte, c.chunkSize)
	for offset < size {
		chunkLen := c.chunkSize
		if remaining := size - offset; remaining < chunkLen {
			chunkLen = remaining
		}
		if _, err := io.ReadFull(file, buf[:chunkLen]); err != nil {
			return "", fmt.Errorf("read video chunk at %d: %w", offset, err)
		}

		videoID, nextOffset, err := c.sendChunk(ctx, token, sessionURL, buf[:chunkLen], offset, size)
		if err != nil {
			return "", err
		}
		if videoID != "" {
			return videoID, nil
		}
		if nextOffset <= offset {
			return "", fmt.Errorf("upload made no progress at offset %d", offset)
		}
		if nextOffset != offset+chunkLen {
			if _, err := file.Seek(nextOffset, io.SeekStart); err != nil {
				return "", fmt.Errorf("seek to resume offset %d: %w", nextOffset, err)
			}
		}
		offset = nextOffset
	}
	return "", errors.New("upload completed without a video id")
}

// sendChunk uploads one chunk. It returns the video ID when the upload is
// complete, otherwise the offset the server expects next.
func (c *Client) sendChunk(ctx context.Context, token, sessionURL string, chunk []byte, offset, total int64) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, bytes.NewReader(chunk))
	if err != nil {
		return "", 0, fmt.Errorf("build chunk request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "video/mp4")
	req.Header.Set("Content-Range",
		fmt.Sprintf("bytes %d-%d/%d", offset, offset+int64(len(chunk))-1, total))
	req.ContentLength = int64(len(chunk))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("upload chunk at %d: %w", offset, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var uploaded struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
			return "", 0, fmt.Errorf("decode upload response: %w", err)
		}
		if uploaded.ID == "" {
			return "", 0, errors.New("upload response missing video id")
		}
		return uploaded.ID, 0, nil
	case resp.StatusCode == 308:
		return "", nextOffsetFromRange(resp.Header.Get("Range"), offset+int64(len(chunk))), nil
	default:
		return "", 0, apiError("upload chunk", resp)
	}
}

// nextOffsetFromRange parses a "bytes=0-N" Range header into the next byte
// offset. A missing header means the server received the whole chunk.
func nextOffsetFromRange(header string, fallback int64) int64 {
	if header == "" {
		return fallback
	}
	_, end, ok := strings.Cut(header, "-")
	if !ok {
		return fallback
	}
	last, err := strconv.ParseInt(strings.TrimSpace(end), 10, 64)
	if err != nil {
		return fallback
	}
	return last + 1
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// accessTokenLocked returns a cached access token, refreshing it through the
// OAuth2 refresh-token grant when expired.
func (c *Client) accessTokenLocked(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {c.refreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError("refresh access token", resp)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", errors.New("token response missing access_token")
	}

	c.accessToken = token.AccessToken
	expiresIn := time.Duration(token.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	// Refresh a minute early so in-flight chunks never race expiry.
	c.tokenExpiry = time.Now().Add(expiresIn - time.Minute)
	return c.accessToken, nil
}

// HealthCheck verifies credentials by performing a token refresh.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.accessTokenLocked(ctx)
	return err
}

func apiError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	snippet := strings.TrimSpace(string(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}
	if snippet == "" {
		return fmt.Errorf("%s: youtube returned %d", operation, resp.StatusCode)
	}
	return fmt.Errorf("%s: youtube returned %d: %s", operation, resp.StatusCode, snippet)
}
