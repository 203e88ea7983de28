package web

import (
	"net/http"

	"github.com/JonMunkholm/fieldmap/internal/core"
	"github.com/JonMunkholm/fieldmap/internal/logging"
)

// FormatResponse describes a registered export format.
type FormatResponse struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Extension string `json:"extension,omitempty"`
	Fallback  string `json:"fallback,omitempty"`
}

// StatusResponse reports server load.
type StatusResponse struct {
	Sessions int                      `json:"sessions"`
	Exports  core.ExportLimiterStatus `json:"exports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleSchema returns the ordered target fields.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"fields": s.service.Schema().Fields()})
}

// handleFormats lists the registered export formats.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	defs := core.Formats()
	resp := make([]FormatResponse, len(defs))
	for i, d := range defs {
		resp[i] = FormatResponse{
			Key:       d.Key,
			Label:     d.Label,
			Extension: d.Extension,
			Fallback:  d.Fallback,
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{
		Sessions: s.service.SessionCount(),
		Exports:  s.service.ExportLimiterStatus(),
	})
}

// handleCreateSession starts a new mapping session.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.NewSession()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "session_id", sess.ID()).Info("session created")
	w.Header().Set("Location", "/api/sessions/"+sess.ID())
	writeJSONStatus(w, http.StatusCreated, map[string]string{"id": sess.ID()})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := s.service.CloseSession(sess.ID()); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("session closed")
	w.WriteHeader(http.StatusNoContent)
}
