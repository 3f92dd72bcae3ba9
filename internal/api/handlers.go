package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"gradient/internal/pagetext"
	"gradient/internal/segmenter"
	"gradient/internal/summary"
	"gradient/internal/tokenizer"
)

func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !pagetext.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	seg, err := s.segmenterFor(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	prod, err := pagetext.ForFile(filename, s.opts)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	text, err := prod.Produce(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Error("produce failed", "document", filename, "error", err)
		jsonError(w, "failed to extract text: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	chunks := seg.Segment(text, filename)
	sum := summary.Summarize(filename, chunks)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document": filename,
		"chunks":   chunks,
		"summary":  sum,
	})
}

// segmenterFor honors per-request size envelope overrides; without any it
// returns the process-wide segmenter.
func (s *Server) segmenterFor(r *http.Request) (*segmenter.Segmenter, error) {
	cfg := s.cfg.Segmenter()
	overridden := false
	for param, dst := range map[string]*int{
		"target_char": &cfg.TargetChar,
		"min_char":    &cfg.MinChar,
		"max_char":    &cfg.MaxChar,
	} {
		v := r.FormValue(param)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", param, v)
		}
		*dst = n
		overridden = true
	}
	if !overridden {
		return s.seg, nil
	}
	return segmenter.New(cfg, tokenizer.Count)
}

func (s *Server) handleEmbedStats(w http.ResponseWriter, r *http.Request) {
	if s.embedInfo == nil || s.embedStats == nil {
		jsonError(w, "embed stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"provider":  s.embedInfo.Provider(),
		"model":     s.embedInfo.Model(),
		"dimension": s.embedInfo.Dimension(),
		"stats":     s.embedStats.Snapshot(),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
