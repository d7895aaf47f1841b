// Package client is a typed Go client for the ProConnect API. Credentials are
// passed per call; the client itself holds no session state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:5000/api".
	BaseURL string
	// HTTPClient defaults to a client with a 10 second timeout.
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("client: BaseURL is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("client: invalid BaseURL: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: base, http: hc}, nil
}

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Bio   string `json:"bio"`
}

// Profile is another user's public view. Email is empty for anonymous callers.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Bio   string `json:"bio"`
	Email string `json:"email,omitempty"`
}

type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	User      Author    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	User      Author    `json:"user"`
	Likes     []string  `json:"likes"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdate is a partial profile edit; nil fields are left unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Bio   *string `json:"bio,omitempty"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("proconnect: %d %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPosts returns the public feed, newest first.
func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var out []Post
	err := c.do(ctx, http.MethodGet, "/posts", "", nil, &out)
	return out, err
}

func (c *Client) ListMyPosts(ctx context.Context, token string) ([]Post, error) {
	var out []Post
	err := c.do(ctx, http.MethodGet, "/posts/mine", token, nil, &out)
	return out, err
}

func (c *Client) ListUserPosts(ctx context.Context, userID string) ([]Post, error) {
	var out []Post
	err := c.do(ctx, http.MethodGet, "/posts/user/"+url.PathEscape(userID), "", nil, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, token, content string) (*Post, error) {
	var out Post
	if err := c.do(ctx, http.MethodPost, "/posts", token, map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePost(ctx context.Context, token, postID, content string) (*Post, error) {
	var out Post
	if err := c.do(ctx, http.MethodPut, "/posts/"+url.PathEscape(postID), token, map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, token, postID string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(postID), token, nil, nil)
}

// ToggleLike likes the post if the caller has not, and unlikes it otherwise.
func (c *Client) ToggleLike(ctx context.Context, token, postID string) (*LikeResult, error) {
	var out LikeResult
	if err := c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/like", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddComment returns the post's full comment list including the new comment.
func (c *Client) AddComment(ctx context.Context, token, postID, text string) ([]Comment, error) {
	var out []Comment
	err := c.do(ctx, http.MethodPost, "/posts/"+url.PathEscape(postID)+"/comment", token, map[string]string{"text": text}, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMe(ctx context.Context, token string, update ProfileUpdate) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPut, "/users/me", token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches a user's public profile. token may be empty.
func (c *Client) Profile(ctx context.Context, token, userID string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(userID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
