package web

import (
	"net/http"

	"github.com/JonMunkholm/fieldmap/internal/core"
)

// AutoMapRequest selects the auto-mapping strategy.
type AutoMapRequest struct {
	Strategy string `json:"strategy"` // "name" (default), "positional" or "rules"
}

// AutoMapResponse is the mapping after auto-mapping, with per-field scores
// for the name strategy and the sources without a column for rules.
type AutoMapResponse struct {
	MappingResponse
	Matches        []core.FieldMatch `json:"matches,omitempty"`
	MissingSources []string          `json:"missingSources,omitempty"`
}

// SetMappingRequest assigns one field. A null column unmaps it.
type SetMappingRequest struct {
	Field  string `json:"field"`
	Column *int   `json:"column"`
}

// PreviewResponse holds projected rows.
type PreviewResponse struct {
	Fields    []string         `json:"fields"`
	Rows      []core.ExportRow `json:"rows"`
	TotalRows int              `json:"totalRows"`
}

// handleAutoMap replaces the session mapping using the requested strategy.
func (s *Server) handleAutoMap(w http.ResponseWriter, r *http.Request) {
	var req AutoMapRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}

	sess := sessionFrom(r.Context())
	var resp AutoMapResponse
	switch req.Strategy {
	case "", "name":
		matches, err := sess.AutoMapByName()
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		resp.Matches = matches
	case "positional":
		if err := sess.AutoMapPositional(); err != nil {
			s.respondError(w, r, err)
			return
		}
	case "rules":
		missing, err := sess.AutoMapRules(nil)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		resp.MissingSources = missing
	default:
		s.respondError(w, r, badRequest("unknown strategy %q", req.Strategy))
		return
	}

	resp.MappingResponse = mappingResponse(sess.CurrentMapping(), sess.Table().Header)
	writeJSON(w, resp)
}

func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	s.writeMapping(w, r, sessionFrom(r.Context()))
}

// handleSetMapping edits one field of the mapping.
func (s *Server) handleSetMapping(w http.ResponseWriter, r *http.Request) {
	var req SetMappingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Field == "" {
		s.respondError(w, r, badRequest("field is required"))
		return
	}

	sess := sessionFrom(r.Context())
	column := core.Unmapped
	if req.Column != nil {
		column = *req.Column
	}
	if err := sess.SetMapping(req.Field, column); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeMapping(w, r, sess)
}

func (s *Server) handleClearMapping(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := sess.ClearMapping(); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeMapping(w, r, sess)
}

func (s *Server) writeMapping(w http.ResponseWriter, r *http.Request, sess *core.Session) {
	m := sess.CurrentMapping()
	if m == nil {
		s.respondError(w, r, core.ErrNoTable)
		return
	}
	writeJSON(w, mappingResponse(m, sess.Table().Header))
}

// handlePreview returns the first rows of the projection.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if r.URL.Query().Has("mappedOnly") {
		sess.SetMappedOnly(r.URL.Query().Get("mappedOnly") == "true")
	}
	if r.URL.Query().Has("derive") {
		setDerive(sess, r.URL.Query().Get("derive") == "true")
	}

	fields, rows, err := sess.Project()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	limit := parseIntParam(r, "limit", 20)
	total := len(rows)
	if limit < total {
		rows = rows[:limit]
	}
	writeJSON(w, PreviewResponse{Fields: fields, Rows: rows, TotalRows: total})
}
