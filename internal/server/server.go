package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"bilal-chat-backend/internal/config"
	"bilal-chat-backend/internal/db"
	"bilal-chat-backend/internal/dialogue"
	"bilal-chat-backend/internal/intent"
	"bilal-chat-backend/internal/llm"
	"bilal-chat-backend/internal/store"
	"bilal-chat-backend/internal/types"
)

type Server struct {
	router       *chi.Mux
	cfg          config.Config
	store        *store.MemoryStore
	knowledge    *store.KnowledgeStore
	appointments *store.AppointmentLog
	controller   *dialogue.Controller
	database     *db.DB
}

// NewServer wires the full stack from config, constructing the real
// completion client.
func NewServer(cfg config.Config) (*Server, error) {
	client := llm.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.Model, cfg.CompletionTimeout)
	return New(cfg, client)
}

// New wires the server around the given completion client.
func New(cfg config.Config, client llm.Client) (*Server, error) {
	policy := intent.DefaultPolicy()
	if cfg.PolicyFile != "" {
		var err error
		policy, err = intent.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load intent policy: %w", err)
		}
	}

	knowledge, err := store.NewKnowledgeStore(cfg.KnowledgeFile, cfg.KnowledgeMaxChars)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge store: %w", err)
	}

	var database *db.DB
	var appointmentDB store.AppointmentDatabase
	if cfg.DatabaseURL != "" {
		database, err = db.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.RunMigrations(cfg.MigrationsDir); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("[server] database connection established")
		appointmentDB = store.NewDatabaseStore(database)
	} else {
		log.Println("[server] DB_URL not provided, appointments kept in memory only")
	}

	appointments := store.NewAppointmentLog(appointmentDB)
	controller := dialogue.NewController(policy, client, knowledge, appointments, cfg.MaxOutputTokens, cfg.Temperature)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Session-Id"},
		ExposedHeaders:   []string{"X-Session-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:       r,
		cfg:          cfg,
		store:        store.NewMemoryStore(cfg.MaxMessages, cfg.HistoryWindow),
		knowledge:    knowledge,
		appointments: appointments,
		controller:   controller,
		database:     database,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	s.router.Post("/api/chat", s.handleChat)
	// Admin: knowledge management and appointment review
	s.router.Post("/api/admin/unlock", s.handleAdminUnlock)
	s.router.Get("/api/admin/knowledge", s.requireAdmin(s.handleGetKnowledge))
	s.router.Put("/api/admin/knowledge", s.requireAdmin(s.handleSetKnowledge))
	s.router.Post("/api/admin/knowledge/upload", s.requireAdmin(s.handleUploadKnowledge))
	s.router.Get("/api/admin/appointments", s.requireAdmin(s.handleListAppointments))
	s.router.Get("/api/admin/appointments/export", s.requireAdmin(s.handleExportAppointments))
	s.router.Get("/api/admin/stats", s.requireAdmin(s.handleStats))
}

func (s *Server) Router() http.Handler { return s.router }

// Close releases the optional database connection.
func (s *Server) Close() {
	if s.database != nil {
		s.database.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if s.database != nil {
		if err := s.database.HealthCheck(); err != nil {
			status["database"] = "unreachable"
		} else {
			status["database"] = "ok"
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}

// handleChat runs one user turn to completion: append the user message,
// drive the dialogue controller, append and return the reply. Downstream
// failures never surface here; the controller substitutes its fallback.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	sid := getOrCreateSessionID(r, w, req.SessionID)

	// One turn per session at a time: the dialogue context is mutated
	// without a lock of its own.
	unlock := s.store.LockSession(sid)
	defer unlock()

	s.store.Append(sid, store.Message{Role: "user", Content: req.Message})
	sess := s.store.Dialogue(sid)

	turn := s.controller.HandleTurn(r.Context(), sess, req.Message)
	s.store.RecordTurn(turn.Intent)
	s.store.Append(sid, store.Message{Role: "assistant", Content: turn.Reply})

	if turn.Booked != nil {
		log.Printf("[chat] appointment booked for %q", turn.Booked.Name)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(types.ChatResponse{
		SessionID: sid,
		Reply:     turn.Reply,
		Intent:    string(turn.Intent),
		State:     string(turn.State),
	})
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg})
}

func newSessionID() string {
	return "s_" + uuid.NewString()
}

// getSessionID retrieves the session ID from cookie, header, or query parameter
func getSessionID(r *http.Request) string {
	if cookie, err := GetSessionCookie(r); err == nil && cookie != "" {
		return cookie
	}
	if sid := r.Header.Get("X-Session-Id"); sid != "" {
		return sid
	}
	if sid := r.URL.Query().Get("sessionId"); sid != "" {
		return sid
	}
	return ""
}

// getOrCreateSessionID resolves the session ID from the request, then from
// the request-body fallback, or creates a new one, setting the cookie.
func getOrCreateSessionID(r *http.Request, w http.ResponseWriter, bodySessionID string) string {
	sid := getSessionID(r)
	if sid == "" {
		sid = strings.TrimSpace(bodySessionID)
	}
	if sid == "" {
		sid = newSessionID()
		log.Printf("[session] creating new session: %s for endpoint: %s", sid, r.URL.Path)
		SetSessionCookie(w, sid)
	}
	return sid
}
