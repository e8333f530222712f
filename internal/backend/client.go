package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	app_errors "citizen-impact/client/internal/errors"
	"citizen-impact/client/internal/model"
)

// Client talks to the answering/session service over HTTP+JSON. Every call
// is a single attempt with no retry loop; a failed request is reported to
// the caller and surfaced according to the controller's failure policy.
type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(baseURL string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 60 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createSessionRequest struct {
	UserEmail string `json:"user_email"`
	Title     string `json:"title"`
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// historyRecord is the backend's shape for one stored message.
type historyRecord struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// SignIn exchanges credentials for an access token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Credentials, error) {
	var creds model.Credentials
	err := c.postJSON(ctx, "/signin", signInRequest{Email: email, Password: password}, &creds)
	if err != nil {
		return nil, err
	}
	if creds.UserEmail == "" {
		// Older backend versions omit the email from the response.
		creds.UserEmail = email
	}
	return &creds, nil
}

// SignUp registers a new account and signs it in.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (*model.Credentials, error) {
	var creds model.Credentials
	err := c.postJSON(ctx, "/signup", signUpRequest{Name: name, Email: email, Password: password}, &creds)
	if err != nil {
		return nil, err
	}
	if creds.UserEmail == "" {
		creds.UserEmail = email
	}
	return &creds, nil
}

// ListSessions fetches the persisted session summaries owned by email,
// ordered by the backend (most recent first).
func (c *Client) ListSessions(ctx context.Context, email string) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := c.getJSON(ctx, "/sessions/"+email, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession persists a new conversation thread and returns it with its
// server-assigned id.
func (c *Client) CreateSession(ctx context.Context, email, title string) (*model.ChatSession, error) {
	var session model.ChatSession
	err := c.postJSON(ctx, "/sessions", createSessionRequest{UserEmail: email, Title: title}, &session)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// History fetches the stored messages of a session, in backend order, and
// maps them onto the client message model (role "user" becomes the user
// author, everything else the assistant).
func (c *Client) History(ctx context.Context, sessionID string) ([]model.Message, error) {
	var records []historyRecord
	if err := c.getJSON(ctx, "/history/"+sessionID, &records); err != nil {
		return nil, err
	}

	messages := make([]model.Message, 0, len(records))
	for _, rec := range records {
		author := model.AuthorAssistant
		if rec.Role == "user" {
			author = model.AuthorUser
		}
		messages = append(messages, model.Message{
			ID:        rec.ID,
			Text:      rec.Content,
			Author:    author,
			CreatedAt: rec.Timestamp,
		})
	}
	return messages, nil
}

// Chat sends one user message to the answering service and returns the
// extracted reply text.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (string, error) {
	body, err := json.Marshal(chatRequest{Message: message, SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("could not marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("could not create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", app_errors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: chat returned status %d: %s", app_errors.ErrUnavailable, resp.StatusCode, string(payload))
	}

	return ExtractAnswer(payload), nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", app_errors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s %s returned status %d: %s",
			statusSentinel(resp.StatusCode), req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}
	return nil
}

// statusSentinel maps HTTP status codes onto the application's sentinel
// errors so callers can branch with errors.Is.
func statusSentinel(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return app_errors.ErrUnauthorized
	case http.StatusNotFound:
		return app_errors.ErrNotFound
	case http.StatusBadRequest:
		return app_errors.ErrValidation
	case http.StatusConflict:
		return app_errors.ErrConflict
	default:
		return app_errors.ErrUnavailable
	}
}
