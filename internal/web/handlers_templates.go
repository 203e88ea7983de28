package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/fieldmap/internal/core"
	"github.com/JonMunkholm/fieldmap/internal/logging"
)

// SaveTemplateRequest names the template captured from the session mapping.
type SaveTemplateRequest struct {
	Name string `json:"name"`
}

// ApplyTemplateResponse is the mapping after applying a template.
type ApplyTemplateResponse struct {
	MappingResponse
	Unresolved []string `json:"unresolved"`
}

// handleListTemplates returns all saved templates.
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.service.Templates().List()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if templates == nil {
		templates = []core.Template{}
	}
	writeJSON(w, templates)
}

// handleGetTemplate returns a single template by name.
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.service.Templates().Load(chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, tpl)
}

// handleDeleteTemplate deletes a template.
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.service.Templates().Delete(name); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("template deleted", "template", name)
	w.WriteHeader(http.StatusNoContent)
}

// handleMatchTemplates suggests templates for the loaded file's header.
func (s *Server) handleMatchTemplates(w http.ResponseWriter, r *http.Request) {
	tbl := sessionFrom(r.Context()).Table()
	if tbl == nil {
		s.respondError(w, r, core.ErrNoTable)
		return
	}

	matches, err := s.service.Templates().Match(tbl.Header)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if matches == nil {
		matches = []core.TemplateMatch{}
	}
	writeJSON(w, matches)
}

// handleSaveTemplate captures the session mapping as a named template.
func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var req SaveTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Name == "" {
		s.respondError(w, r, badRequest("name is required"))
		return
	}

	sess := sessionFrom(r.Context())
	m := sess.CurrentMapping()
	if m == nil {
		s.respondError(w, r, core.ErrNoTable)
		return
	}

	tpl := core.TemplateFromMapping(req.Name, m, sess.Table().Header)
	if err := s.service.Templates().Save(tpl); err != nil {
		s.respondError(w, r, badRequest("save template: %w", err))
		return
	}

	logging.FromContext(r.Context()).Info("template saved", "template", tpl.Name, "fields", len(tpl.Fields))
	writeJSONStatus(w, http.StatusCreated, tpl)
}

// handleApplyTemplate replaces the session mapping with a saved template.
func (s *Server) handleApplyTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := s.service.Templates().Load(chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess := sessionFrom(r.Context())
	unresolved, err := sess.ApplyTemplate(tpl)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if unresolved == nil {
		unresolved = []string{}
	}

	writeJSON(w, ApplyTemplateResponse{
		MappingResponse: mappingResponse(sess.CurrentMapping(), sess.Table().Header),
		Unresolved:      unresolved,
	})
}
