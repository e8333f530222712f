package devserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"citizen-impact/client/internal/database"
	"citizen-impact/client/internal/devserver"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "citizen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	server := devserver.NewServer(db, "test-secret", time.Hour)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestServer_SignUpAndSignIn(t *testing.T) {
	ts := startServer(t)

	signup := map[string]string{"name": "Ana Souza", "email": "ana@example.com", "password": "Secret123"}
	resp := postJSON(t, ts.URL+"/signup", signup)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var creds map[string]string
	decode(t, resp, &creds)
	assert.NotEmpty(t, creds["access_token"])
	assert.Equal(t, "Ana Souza", creds["user_name"])
	assert.Equal(t, "ana@example.com", creds["user_email"])

	t.Run("Duplicate signup conflicts", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/signup", signup)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("Sign in with the right password", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/signin", map[string]string{"email": "ana@example.com", "password": "Secret123"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var creds map[string]string
		decode(t, resp, &creds)
		assert.NotEmpty(t, creds["access_token"])
	})

	t.Run("Wrong password is unauthorized", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/signin", map[string]string{"email": "ana@example.com", "password": "Wrong123"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("Weak password rejected", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/signup", map[string]string{"name": "Bob Brown", "email": "bob@example.com", "password": "alllowercase1"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_SessionsAndChatFlow(t *testing.T) {
	ts := startServer(t)

	// Create a session the way the client does on the first send.
	resp := postJSON(t, ts.URL+"/sessions", map[string]string{
		"user_email": "ana@example.com",
		"title":      "What are my voting rights?",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session map[string]any
	decode(t, resp, &session)
	sessionID, _ := session["id"].(string)
	require.NotEmpty(t, sessionID)

	// The session shows up in the owner's list.
	listResp, err := http.Get(ts.URL + "/sessions/ana@example.com")
	require.NoError(t, err)
	var sessions []map[string]any
	decode(t, listResp, &sessions)
	require.Len(t, sessions, 1)
	assert.Equal(t, sessionID, sessions[0]["id"])

	// A chat round-trip stores both sides of the exchange.
	chatResp := postJSON(t, ts.URL+"/chat", map[string]string{
		"message":    "What are my voting rights?",
		"session_id": sessionID,
	})
	require.Equal(t, http.StatusOK, chatResp.StatusCode)
	var chat struct {
		FinalResponse struct {
			Answer string `json:"answer"`
		} `json:"final_response"`
	}
	decode(t, chatResp, &chat)
	assert.NotEmpty(t, chat.FinalResponse.Answer)

	histResp, err := http.Get(ts.URL + "/history/" + sessionID)
	require.NoError(t, err)
	var history []map[string]any
	decode(t, histResp, &history)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0]["role"])
	assert.Equal(t, "assistant", history[1]["role"])

	t.Run("Chat without a session id is rejected", func(t *testing.T) {
		resp := postJSON(t, ts.URL+"/chat", map[string]string{"message": "hello"})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("History of an unknown session is empty, not an error", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/history/unknown-session")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var history []map[string]any
		decode(t, resp, &history)
		assert.Empty(t, history)
	})
}
