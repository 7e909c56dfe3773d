// Package orumatest provides an in-memory stand-in for the Oruma backend:
// an httptest server covering the REST surface the client consumes plus a
// websocket endpoint events can be pushed through. Tests drive it directly.
package orumatest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/KaushikNagaraj77/oruma-go/internal/domain"
	"github.com/gorilla/websocket"
)

// Server is a fake Oruma backend. Posts seeded via SeedPosts are served in
// order with cursor pagination; toggle endpoints maintain real counters so
// responses carry authoritative values.
type Server struct {
	HTTP *httptest.Server

	mu          sync.Mutex
	posts       []domain.Post
	likeCounts  map[string]int
	likedByUser map[string]bool
	failToggles bool

	upgrader websocket.Upgrader
	conns    []*websocket.Conn

	// LastAuthHeader records the Authorization header of the most recent
	// request, for assertions.
	LastAuthHeader string
}

// New starts the fake backend. Callers must Close it.
func New() *Server {
	s := &Server{
		likeCounts:  make(map[string]int),
		likedByUser: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/posts", s.handleListPosts)
	mux.HandleFunc("GET /api/posts/{id}", s.handleGetPost)
	mux.HandleFunc("PUT /api/posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("POST /api/posts/{id}/like", s.handleToggleLike)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("/ws", s.handleWS)

	s.HTTP = httptest.NewServer(s.withRecording(mux))
	return s
}

// Close shuts the backend down.
func (s *Server) Close() {
	s.mu.Lock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = nil
	s.mu.Unlock()
	s.HTTP.Close()
}

// URL is the REST base URL.
func (s *Server) URL() string {
	return s.HTTP.URL + "/api"
}

// WSURL is the websocket endpoint URL.
func (s *Server) WSURL() string {
	return "ws" + strings.TrimPrefix(s.HTTP.URL, "http") + "/ws"
}

// SeedPosts replaces the served posts.
func (s *Server) SeedPosts(posts []domain.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append([]domain.Post(nil), posts...)
	for _, p := range posts {
		s.likeCounts[p.ID] = p.LikesCount
		s.likedByUser[p.ID] = p.Liked
	}
}

// FailToggles makes subsequent toggle calls return 500.
func (s *Server) FailToggles(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failToggles = fail
}

// Push sends a realtime envelope to every connected websocket client.
func (s *Server) Push(eventType string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	envelope, err := json.Marshal(map[string]json.RawMessage{
		"type": json.RawMessage(strconv.Quote(eventType)),
		"data": payload,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		if err := c.WriteMessage(websocket.TextMessage, envelope); err != nil {
			return err
		}
	}
	return nil
}

// DropConnections closes all websocket clients, simulating a disconnect.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = nil
}

// ConnCount returns the number of live websocket clients.
func (s *Server) ConnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	start := 0
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cursor")
			return
		}
		start = parsed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	end := start + limit
	if end > len(s.posts) {
		end = len(s.posts)
	}
	var items []domain.Post
	if start < len(s.posts) {
		items = s.posts[start:end]
	}

	resp := map[string]any{
		"items":   items,
		"hasMore": end < len(s.posts),
		"total":   len(s.posts),
	}
	if end < len(s.posts) {
		resp["nextCursor"] = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found")
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i].Content = body.Content
			writeJSON(w, http.StatusOK, s.posts[i])
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found")
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failToggles {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "toggle unavailable")
		return
	}
	if _, ok := s.likeCounts[id]; !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "post not found")
		return
	}

	if s.likedByUser[id] {
		s.likedByUser[id] = false
		s.likeCounts[id]--
	} else {
		s.likedByUser[id] = true
		s.likeCounts[id]++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"liked":      s.likedByUser[id],
		"likesCount": s.likeCounts[id],
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "email is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":         domain.User{ID: "user-1", Name: "Test Student", Email: body.Email},
		"accessToken":  "access-token-1",
		"refreshToken": "refresh-token-1",
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":  "access-token-2",
		"refreshToken": "refresh-token-2",
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("token") == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	// Drain client-originated events so writes from the client don't block.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) withRecording(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.LastAuthHeader = r.Header.Get("Authorization")
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
