// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stubserver is an in-memory implementation of the chat API.
//
// It serves the same routes, envelopes and error payloads as a real backend
// so the client, the orchestrator and the TUI can be exercised end to end
// without one. Failures can be injected per request with ?fail=<status> or
// programmatically with FailNext.
//
// # Usage
//
//	srv := stubserver.New(stubserver.Options{Email: "demo@rigchat.dev", Password: "demo"})
//	ts := httptest.NewServer(srv.Handler())
//	client := api.NewClient(ts.URL)
package stubserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jeranaias/rigchat/internal/api"
	"github.com/jeranaias/rigchat/internal/model"
)

// Default demo credentials.
const (
	DefaultEmail    = "demo@rigchat.dev"
	DefaultPassword = "demo"
)

// Options configures a Server.
type Options struct {
	Email    string
	Password string
	Name     string

	// ReplyDelay is waited before answering a send.
	ReplyDelay time.Duration

	// Reply builds the bot answer for a user message. Defaults to an echo.
	Reply func(text string) string

	Documents []model.Document

	// Now is the clock used for created_at. Defaults to time.Now.
	Now func() time.Time
}

// Server holds the stub state.
type Server struct {
	opts Options

	mu       sync.Mutex
	tokens   map[string]model.Profile
	history  []model.Message
	nextID   int64
	failures map[string][]int
}

// New creates a stub server.
func New(opts Options) *Server {
	if opts.Email == "" {
		opts.Email = DefaultEmail
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.Name == "" {
		opts.Name = "Demo User"
	}
	if opts.Reply == nil {
		opts.Reply = defaultReply
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Documents == nil {
		opts.Documents = []model.Document{
			{ID: 1, Title: "Employee Handbook"},
			{ID: 2, Title: "Security Policy"},
			{ID: 3, Title: "Onboarding Guide"},
		}
	}
	return &Server{
		opts:     opts,
		tokens:   make(map[string]model.Profile),
		failures: make(map[string][]int),
	}
}

func defaultReply(text string) string {
	return "Here is what I found about: " + strings.TrimSpace(text)
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.Register(r)
	return r
}

// Register registers the API routes on r.
func (s *Server) Register(r *mux.Router) {
	r.Use(s.logging, s.injectFailures)

	r.HandleFunc(api.PathLogin, s.login).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireToken)
	authed.HandleFunc(api.PathLogout, s.logout).Methods(http.MethodPost)
	authed.HandleFunc(api.PathUser, s.currentUser).Methods(http.MethodGet)
	authed.HandleFunc(api.PathHistory, s.listHistory).Methods(http.MethodGet)
	authed.HandleFunc(api.PathSend, s.send).Methods(http.MethodPost)
	authed.HandleFunc(api.PathClear, s.clear).Methods(http.MethodPost)
	authed.HandleFunc(api.PathDocuments, s.listDocuments).Methods(http.MethodGet)
}

// IssueToken creates a session for the configured user without a login call.
func (s *Server) IssueToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.New().String()
	s.tokens[token] = s.profile()
	return token
}

// FailNext makes the next request to path answer with status.
func (s *Server) FailNext(path string, status int) {
	s.mu.Lock()
	s.failures[path] = append(s.failures[path], status)
	s.mu.Unlock()
}

// History returns a copy of the stored exchanges.
func (s *Server) History() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneAll(s.history)
}

func (s *Server) profile() model.Profile {
	return model.Profile{ID: 1, Email: s.opts.Email, Name: s.opts.Name}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("STUB_REQUEST | method=%s path=%s request_id=%s", r.Method, r.URL.Path, r.Header.Get("X-Request-ID"))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := 0
		if v := r.URL.Query().Get("fail"); v != "" {
			status, _ = strconv.Atoi(v)
		}
		if status == 0 {
			s.mu.Lock()
			if queue := s.failures[r.URL.Path]; len(queue) > 0 {
				status = queue[0]
				s.failures[r.URL.Path] = queue[1:]
			}
			s.mu.Unlock()
		}
		if status >= 400 {
			writeError(w, status, "Injected failure.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON.")
		return
	}
	if !strings.EqualFold(strings.TrimSpace(creds.Email), s.opts.Email) || creds.Password != s.opts.Password {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "These credentials do not match our records.",
			"errors":  map[string][]string{"email": {"These credentials do not match our records."}},
		})
		return
	}

	token := s.IssueToken()
	writeData(w, map[string]any{
		"accessToken": token,
		"user":        s.profile(),
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	writeData(w, map[string]any{})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]any{"user": s.profile()})
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", api.DefaultHistoryLimit)
	offset := queryInt(r, "offset", 0)

	s.mu.Lock()
	total := len(s.history)
	end := total - offset
	if end < 0 {
		end = 0
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	page := model.CloneAll(s.history[start:end])
	s.mu.Unlock()

	if page == nil {
		page = []model.Message{}
	}
	writeData(w, map[string]any{"messages": page, "total": total})
}

func (s *Server) send(w http.ResponseWriter, r *http.Request) {
	var req api.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON.")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The message field is required.",
			"errors":  map[string][]string{"message": {"The message field is required."}},
		})
		return
	}
	docs, ok := s.lookupDocuments(req.DocumentIDs)
	if !ok {
		writeError(w, http.StatusForbidden, "No access to the requested documents.")
		return
	}

	if !sleepCtx(r.Context(), s.opts.ReplyDelay) {
		return
	}

	s.mu.Lock()
	userCreated := s.opts.Now()
	s.nextID++
	user := model.Message{
		ID:        model.MessageID(strconv.FormatInt(s.nextID, 10)),
		Type:      model.TypeUser,
		Status:    model.StatusReplied,
		Text:      req.Message,
		Documents: docs,
		CreatedAt: userCreated,
	}
	s.nextID++
	bot := model.Message{
		ID:        model.MessageID(strconv.FormatInt(s.nextID, 10)),
		Type:      model.TypeBot,
		Status:    model.StatusReplied,
		Text:      s.opts.Reply(req.Message),
		Documents: docs,
		CreatedAt: s.opts.Now(),
	}
	stored := user.Clone()
	stored.Pairing = model.ServerPaired{Replies: []model.Message{bot.Clone()}}
	s.history = append(s.history, stored)
	s.mu.Unlock()

	writeData(w, map[string]any{
		"user_message": user,
		"bot_response": bot,
	})
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	writeData(w, map[string]any{})
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", api.DefaultDocumentsPerPage)
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = api.DefaultDocumentsPerPage
	}

	total := len(s.opts.Documents)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	lastPage := (total + perPage - 1) / perPage
	if lastPage == 0 {
		lastPage = 1
	}

	writeData(w, map[string]any{
		"documents":    s.opts.Documents[start:end],
		"total":        total,
		"current_page": page,
		"last_page":    lastPage,
	})
}

func (s *Server) lookupDocuments(ids []int64) ([]model.DocumentRef, bool) {
	if len(ids) == 0 {
		return nil, true
	}
	byID := make(map[int64]model.Document, len(s.opts.Documents))
	for _, d := range s.opts.Documents {
		byID[d.ID] = d
	}
	refs := make([]model.DocumentRef, 0, len(ids))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok {
			return nil, false
		}
		refs = append(refs, model.DocumentRef(d.DisplayLabel()))
	}
	return refs, true
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
