package web

// Shared request parsing and response shaping for the handlers.

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/JonMunkholm/fieldmap/internal/core"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return badRequest("decode body: %w", err)
	}
	return nil
}

// safeBaseName reduces a client-supplied name to a bare file name without
// directory parts or extension, or def when nothing usable remains.
func safeBaseName(name, def string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		return def
	}
	return base
}

// MappingResponse is the JSON view of a session mapping.
type MappingResponse struct {
	Fields   []core.FieldAssignment `json:"fields"`
	Mapped   int                    `json:"mapped"`
	Complete bool                   `json:"complete"`
	Shared   map[int][]string       `json:"shared,omitempty"` // column index -> fields
}

func mappingResponse(m *core.Mapping, header []string) MappingResponse {
	resp := MappingResponse{
		Fields:   m.List(header),
		Mapped:   m.MappedCount(),
		Complete: m.IsComplete(),
	}
	if shared := m.SharedColumns(); len(shared) > 0 {
		resp.Shared = shared
	}
	return resp
}

// ExportResponse is the JSON view of an export result.
type ExportResponse struct {
	State      core.ExportState    `json:"state"`
	Format     string              `json:"format"`
	Path       string              `json:"path,omitempty"`
	Rows       int                 `json:"rows"`
	Offer      *core.FallbackOffer `json:"offer,omitempty"`
	Error      *ErrorResponse      `json:"error,omitempty"`
	DurationMS int64               `json:"durationMs"`
}

func exportResponse(res core.ExportResult) ExportResponse {
	resp := ExportResponse{
		State:      res.State,
		Format:     res.Format,
		Path:       res.Path,
		Rows:       res.Rows,
		Offer:      res.Offer,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		e := errorResponse(core.MapError(res.Err))
		resp.Error = &e
	}
	return resp
}
