package devserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	app_errors "citizen-impact/client/internal/errors"
	"citizen-impact/client/internal/validate"
)

// Server is a local stand-in for the answering/session backend. It speaks
// the same wire API the production service does, backed by SQLite and a
// canned answerer, so the client can be developed and tested offline.
type Server struct {
	store    *Store
	issuer   *tokenIssuer
	answerer Answerer
}

func NewServer(db *sql.DB, jwtSecret string, tokenTTL time.Duration) *Server {
	return &Server{
		store:    NewStore(db),
		issuer:   newTokenIssuer(jwtSecret, tokenTTL),
		answerer: cannedAnswerer{},
	}
}

// Router assembles the chi router with the middleware the production
// backend applies: permissive CORS (the original allows any origin) plus a
// per-IP rate limit on the answering endpoint.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/signup", s.handleSignUp)
	r.Post("/signin", s.handleSignIn)
	r.Get("/sessions/{email}", s.handleListSessions)
	r.Post("/sessions", s.handleCreateSession)
	r.Get("/history/{sessionID}", s.handleHistory)

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(30, time.Minute))
		r.Post("/chat", s.handleChat)
	})

	return r
}

type credentialsResponse struct {
	AccessToken string `json:"access_token"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req validate.SignUpInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, app_errors.ErrValidation)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, err)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		respondWithError(w, err)
		return
	}
	user := &User{Email: req.Email, Name: req.Name, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		respondWithError(w, err)
		return
	}

	s.respondWithToken(w, user)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req validate.SignInInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, app_errors.ErrValidation)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, err)
		return
	}

	user, err := s.store.UserByEmail(r.Context(), req.Email)
	if err != nil || !verifyPassword(user.PasswordHash, req.Password) {
		respondWithError(w, app_errors.ErrUnauthorized)
		return
	}

	s.respondWithToken(w, user)
}

func (s *Server) respondWithToken(w http.ResponseWriter, user *User) {
	token, err := s.issuer.issue(user.Email)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, credentialsResponse{
		AccessToken: token,
		UserName:    user.Name,
		UserEmail:   user.Email,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	sessions, err := s.store.SessionsByEmail(r.Context(), email)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sessions)
}

type createSessionRequest struct {
	UserEmail string `json:"user_email" validate:"required,email"`
	Title     string `json:"title" validate:"required,max=100"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, app_errors.ErrValidation)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, err)
		return
	}

	session, err := s.store.CreateSession(r.Context(), req.UserEmail, req.Title)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	messages, err := s.store.History(r.Context(), sessionID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messages)
}

type chatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

// handleChat mirrors the production flow: the user's message is stored
// first, the answer is produced, the answer is stored, and the reply goes
// out under final_response.answer.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, app_errors.ErrValidation)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, err)
		return
	}

	ctx := r.Context()
	if err := s.store.SaveMessage(ctx, req.SessionID, "user", req.Message); err != nil {
		respondWithError(w, err)
		return
	}

	answer := s.answerer.Answer(req.Message)

	if err := s.store.SaveMessage(ctx, req.SessionID, "assistant", answer); err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"final_response": map[string]string{"answer": answer},
	})
}

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondWithError maps sentinel errors onto HTTP status codes and emits a
// standard JSON error body. Unrecognized errors become a generic 500 so
// implementation details never leak to the client.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		statusCode = http.StatusConflict
		message = "Email already registered"
	case errors.Is(err, app_errors.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		message = "Invalid credentials"
	default:
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)
	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}
