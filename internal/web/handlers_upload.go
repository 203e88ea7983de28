package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/JonMunkholm/fieldmap/internal/core"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

const defaultSampleRows = 10

// handleUpload loads a CSV file into the session, replacing any previous
// file and resetting the mapping.
//
// The file is sent either as the "file" field of a multipart form or as the
// raw request body, in which case the "name" query parameter labels it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	maxSize := s.cfg.Decode.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	name, raw, err := readUpload(r, maxSize)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
		}
		s.respondError(w, r, err)
		return
	}

	if _, err := sess.LoadBytes(name, raw); err != nil {
		s.respondError(w, r, err)
		return
	}

	sum, err := sess.Summary(parseIntParam(r, "sample", defaultSampleRows))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, sum)
}

// readUpload returns the uploaded file name and contents.
func readUpload(r *http.Request, maxSize int64) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, err
		}
		if len(raw) == 0 {
			return "", nil, errNoFile
		}
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			name = "upload.csv"
		}
		return name, raw, nil
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", nil, badRequest("multipart form: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, errNoFile
	}
	defer file.Close()

	if header.Size > maxSize {
		return "", nil, fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
	}
	raw, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return header.Filename, raw, nil
}

// handleFileSummary describes the loaded file.
func (s *Server) handleFileSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := sessionFrom(r.Context()).Summary(parseIntParam(r, "sample", defaultSampleRows))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, sum)
}
