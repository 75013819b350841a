package server

import (
	"crypto/subtle"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"bilal-chat-backend/internal/knowledge"
	"bilal-chat-backend/internal/types"
)

const maxUploadBytes = 16 << 20

// handleAdminUnlock compares the submitted secret against the configured one
// and marks the session as admin for its remainder. Failures are plain
// rejections; there is no lockout or backoff.
func (s *Server) handleAdminUnlock(w http.ResponseWriter, r *http.Request) {
	var req types.UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sid := getOrCreateSessionID(r, w, "")
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.cfg.AdminSecret)) != 1 {
		log.Printf("[admin] unlock rejected for session %s", sid)
		s.writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}
	s.store.UnlockAdmin(sid)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-Id", sid)
	_ = json.NewEncoder(w).Encode(types.UnlockResponse{Unlocked: true})
}

// requireAdmin guards admin handlers behind a prior successful unlock for
// this session.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := getSessionID(r)
		if sid == "" || !s.store.IsAdmin(sid) {
			s.writeError(w, http.StatusForbidden, "admin unlock required")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleGetKnowledge(w http.ResponseWriter, r *http.Request) {
	blob := s.knowledge.Get()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.KnowledgeResponse{Knowledge: blob, Chars: len([]rune(blob))})
}

func (s *Server) handleSetKnowledge(w http.ResponseWriter, r *http.Request) {
	var req types.SetKnowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.knowledge.Set(req.Text); err != nil {
		log.Printf("[admin] failed to save knowledge: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save knowledge")
		return
	}
	blob := s.knowledge.Get()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.KnowledgeResponse{Knowledge: blob, Chars: len([]rune(blob))})
}

// handleUploadKnowledge accepts a multipart PDF or plain-text file, extracts
// its text, and replaces the knowledge blob wholesale.
func (s *Server) handleUploadKnowledge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "knowledge file is required (field 'file')")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	text, err := knowledge.ExtractText(header.Filename, data)
	if err != nil {
		log.Printf("[admin] failed to extract text from %s: %v", header.Filename, err)
		s.writeError(w, http.StatusUnprocessableEntity, "could not extract text from file")
		return
	}
	if err := s.knowledge.Set(text); err != nil {
		log.Printf("[admin] failed to save knowledge: %v", err)
		s.writeError(w, http.StatusInternalServerError, "failed to save knowledge")
		return
	}
	blob := s.knowledge.Get()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(types.KnowledgeResponse{Knowledge: blob, Chars: len([]rune(blob))})
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	appts := s.appointments.List()
	views := make([]types.AppointmentView, 0, len(appts))
	for _, a := range appts {
		views = append(views, types.AppointmentView{
			Name:      a.Name,
			DateTime:  a.DateTime,
			Purpose:   a.Purpose,
			CreatedAt: a.CreatedAt,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(views)
}

// handleExportAppointments streams the appointment log as CSV.
func (s *Server) handleExportAppointments(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=appointments-%s.csv", time.Now().Format("2006-01-02")))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"name", "datetime", "purpose", "created_at"})
	for _, a := range s.appointments.List() {
		_ = cw.Write([]string{a.Name, a.DateTime, a.Purpose, a.CreatedAt.Format(time.RFC3339)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("[admin] csv export failed: %v", err)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.store.Stats())
}
