package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/robot-challenge/game/challenge"
	"github.com/wricardo/robot-challenge/game/engine"
	"github.com/wricardo/robot-challenge/game/service"
	"github.com/wricardo/robot-challenge/game/session"
	"github.com/wricardo/robot-challenge/transport/websocket"
)

// maxBodyBytes bounds request bodies; programs and maps are small
const maxBodyBytes = 1 << 20

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  *slog.Logger
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(gameService service.GameService, hub *websocket.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger.With("component", "api"),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/help", s.handleHelp).Methods("GET")

	// Challenges
	api.HandleFunc("/challenges", s.handleListChallenges).Methods("GET")
	api.HandleFunc("/challenges", s.handleCreateChallenge).Methods("POST")
	api.HandleFunc("/challenges/{name}", s.handleGetChallenge).Methods("GET")
	api.HandleFunc("/challenges/{name}/solve", s.handleSolve).Methods("POST")

	// Programs
	api.HandleFunc("/compile", s.handleCompile).Methods("POST")

	// Attempts
	api.HandleFunc("/attempts", s.handleListAttempts).Methods("GET")
	api.HandleFunc("/attempts/{id}", s.handleGetAttempt).Methods("GET")
	api.HandleFunc("/attempts/{id}", s.handleDeleteAttempt).Methods("DELETE")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// statusRecorder captures the status code for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The websocket upgrade needs the raw writer
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, challenge.ErrChallengeNotFound), errors.Is(err, session.ErrAttemptNotFound):
		return http.StatusNotFound
	case errors.Is(err, challenge.ErrChallengeExists):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidChallenge),
		errors.Is(err, engine.ErrUnknownTile),
		errors.Is(err, engine.ErrMissingStart),
		errors.Is(err, engine.ErrDuplicateLandmark),
		errors.Is(err, service.ErrInvalidPlayer),
		errors.Is(err, session.ErrInvalidPlayerID):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// Challenge Handlers

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := s.service.ListChallenges(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, challenges)
}

func (s *Server) handleGetChallenge(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	info, err := s.service.GetChallenge(r.Context(), name)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleCreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req engine.Challenge
	if !decodeBody(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "Challenge name is required")
		return
	}

	info, err := s.service.CreateChallenge(r.Context(), &req)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req struct {
		PlayerID string `json:"player_id"`
		Source   string `json:"source"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.service.Solve(r.Context(), name, req.PlayerID, req.Source)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if result.CompileError != "" {
		respondJSON(w, http.StatusBadRequest, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Program Handlers

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Source string `json:"source"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.service.Compile(r.Context(), req.Source)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if !result.Valid {
		respondJSON(w, http.StatusBadRequest, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Attempt Handlers

func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.service.ListAttempts(r.Context(), r.URL.Query().Get("player"))
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, attempts)
}

func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	attempt, err := s.service.GetAttempt(r.Context(), id)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, attempt)
}

func (s *Server) handleDeleteAttempt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.service.DeleteAttempt(r.Context(), id); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Attempt deleted successfully",
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket updates are disabled", http.StatusNotFound)
		return
	}

	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "player parameter required", http.StatusBadRequest)
		return
	}

	s.hub.ServeWS(w, r, playerID)
}

// Help and health

func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Help(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
