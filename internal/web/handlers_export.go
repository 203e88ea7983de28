package web

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/fieldmap/internal/core"
	"github.com/JonMunkholm/fieldmap/internal/logging"
)

// ExportRequest selects the export format and output name. The file is
// written to the session's directory under the server's output directory;
// for the postgres format the name is the table name. Derive splits packed
// survey columns into their field values.
type ExportRequest struct {
	Format     string `json:"format"`
	Name       string `json:"name"`
	MappedOnly *bool  `json:"mappedOnly,omitempty"`
	Derive     *bool  `json:"derive,omitempty"`
}

// handleExport runs the primary export. An OfferFallback result is returned
// with status 200; the client accepts it through /export/fallback.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.Format == "" {
		s.respondError(w, r, badRequest("format is required"))
		return
	}
	def, ok := core.GetFormat(req.Format)
	if !ok {
		s.respondError(w, r, core.ErrUnknownFormat)
		return
	}

	sess := sessionFrom(r.Context())
	dir := s.service.SessionOutputDir(sess.ID())
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.respondError(w, r, err)
		return
	}
	path := filepath.Join(dir, safeBaseName(req.Name, "export")+def.Extension)

	if req.MappedOnly != nil {
		sess.SetMappedOnly(*req.MappedOnly)
	}
	if req.Derive != nil {
		setDerive(sess, *req.Derive)
	}

	res := sess.ExportTo(r.Context(), req.Format, path)
	s.writeExportResult(w, r, res)
}

// handleExportFallback accepts the outstanding fallback offer.
func (s *Server) handleExportFallback(w http.ResponseWriter, r *http.Request) {
	res := sessionFrom(r.Context()).ExportFallback(r.Context(), "")
	s.writeExportResult(w, r, res)
}

// handleDeclineFallback discards the outstanding fallback offer.
func (s *Server) handleDeclineFallback(w http.ResponseWriter, r *http.Request) {
	if !sessionFrom(r.Context()).DeclineFallback() {
		s.respondError(w, r, core.ErrNoFallback)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeExportResult(w http.ResponseWriter, r *http.Request, res core.ExportResult) {
	logger := logging.WithFields(r.Context(), "format", res.Format, "state", string(res.State))
	status := http.StatusOK
	if res.State == core.StateFailed {
		status = statusFor(res.Err)
		logger.Warn("export failed", "error", res.Err)
	}
	writeJSONStatus(w, status, exportResponse(res))
}

// handleDownload serves an exported file of the session.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(r.URL.Query().Get("file"))
	if name == "." || name == string(filepath.Separator) {
		s.respondError(w, r, badRequest("file is required"))
		return
	}

	path := filepath.Join(s.service.SessionOutputDir(sessionFrom(r.Context()).ID()), name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		writeError(w, http.StatusNotFound, "export file not found")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeFile(w, r, path)
}

func setDerive(sess *core.Session, on bool) {
	if on {
		sess.SetDerivations(core.SurveyDerivations())
		return
	}
	sess.SetDerivations(nil)
}
