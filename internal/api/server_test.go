package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradient/internal/config"
	"gradient/internal/pagetext"
	"gradient/internal/segmenter"
	"gradient/internal/tokenizer"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	seg, err := segmenter.New(segmenter.DefaultConfig(), tokenizer.Count)
	require.NoError(t, err)

	cfg := config.Config{
		TargetChar:     500,
		MinChar:        200,
		MaxChar:        800,
		APIKey:         "secret",
		MaxUploadBytes: 1 << 20,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(seg, pagetext.Options{}, nil, nil, log, cfg)
}

func multipartUpload(t *testing.T, field, filename, content string, form map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range form {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthIsPublic(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSegmentRequiresAuth(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/segment", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/segment", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSegmentReturnsChunks(t *testing.T) {
	srv := testServer(t)

	text := "## Page: 1\n" + strings.Repeat("A perfectly ordinary sentence that pads out the upload body. ", 8)
	body, contentType := multipartUpload(t, "file", "doc.txt", text, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/segment", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Document string `json:"document"`
		Chunks   []struct {
			ChunkID    int `json:"chunk_id"`
			PageNumber int `json:"page_number"`
		} `json:"chunks"`
		Summary struct {
			ChunkCount int `json:"chunk_count"`
		} `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "doc.txt", resp.Document)
	require.NotEmpty(t, resp.Chunks)
	assert.Equal(t, 1, resp.Chunks[0].ChunkID)
	assert.Equal(t, 1, resp.Chunks[0].PageNumber)
	assert.Equal(t, len(resp.Chunks), resp.Summary.ChunkCount)
}

func TestSegmentRejectsUnsupportedExtension(t *testing.T) {
	srv := testServer(t)
	body, contentType := multipartUpload(t, "file", "doc.exe", "payload", nil)

	req := httptest.NewRequest(http.MethodPost, "/api/segment", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSegmentHonorsEnvelopeOverrides(t *testing.T) {
	srv := testServer(t)

	// Twenty 15-rune sentences, one per line. With max_char=120 the running
	// count finalizes after every eighth section, and joins add one newline
	// per boundary: two chunks of 127 runes, then a 63-rune remainder.
	text := strings.Repeat("Short sentence.\n", 20)
	body, contentType := multipartUpload(t, "file", "doc.txt", text, map[string]string{
		"target_char": "60",
		"min_char":    "10",
		"max_char":    "120",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/segment", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Chunks []struct {
			CharacterCount int `json:"character_count"`
		} `json:"chunks"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Chunks, 3)
	assert.Equal(t, 127, resp.Chunks[0].CharacterCount)
	assert.Equal(t, 127, resp.Chunks[1].CharacterCount)
	assert.Equal(t, 63, resp.Chunks[2].CharacterCount)
}

func TestSegmentRejectsInvalidOverride(t *testing.T) {
	srv := testServer(t)
	body, contentType := multipartUpload(t, "file", "doc.txt", "Some text.", map[string]string{
		"max_char": "not-a-number",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/segment", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmbedStatsUnavailableWithoutProvider(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/embed", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
