// Package report persists chunk records, document summaries, and failure
// logs as CSV tables with stable column order.
package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gradient/internal/segmenter"
	"gradient/internal/summary"
)

// Failure is one per-document failure row, aggregated by the driver from
// explicit result values.
type Failure struct {
	PDFName string
	Stage   string
	Error   string
}

var (
	chunkHeader = []string{"pdf_name", "chunk_id", "page_number", "character_count", "token_count", "content"}

	// precision/recall/f1 are placeholders for externally computed quality
	// metrics; the core never populates them.
	summaryHeader = []string{
		"pdf_name", "chunk_count", "total_characters", "total_tokens",
		"mean_characters", "stddev_characters", "mean_tokens", "stddev_tokens",
		"precision", "recall", "f1",
	}

	failureHeader = []string{"pdf_name", "stage", "error"}
)

// WriteChunks writes one row per chunk, in order.
func WriteChunks(w io.Writer, chunks []segmenter.Chunk) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(chunkHeader); err != nil {
		return err
	}
	for _, c := range chunks {
		rec := []string{
			c.PDFName,
			strconv.Itoa(c.ChunkID),
			strconv.Itoa(c.PageNumber),
			strconv.Itoa(c.CharacterCount),
			strconv.Itoa(c.TokenCount),
			c.Content,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaries writes one row per document.
func WriteSummaries(w io.Writer, sums []summary.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	for _, s := range sums {
		rec := []string{
			s.PDFName,
			strconv.Itoa(s.ChunkCount),
			strconv.Itoa(s.TotalCharacters),
			strconv.Itoa(s.TotalTokens),
			formatFloat(s.MeanCharacters),
			formatFloat(s.StdDevCharacters),
			formatFloat(s.MeanTokens),
			formatFloat(s.StdDevTokens),
			"", "", "",
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFailures writes one row per failed document stage.
func WriteFailures(w io.Writer, fails []Failure) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(failureHeader); err != nil {
		return err
	}
	for _, f := range fails {
		if err := cw.Write([]string{f.PDFName, f.Stage, f.Error}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteAll writes chunks.csv, summary.csv, and failures.csv under dir.
func WriteAll(dir string, chunks []segmenter.Chunk, sums []summary.Summary, fails []Failure) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "chunks.csv"), func(w io.Writer) error {
		return WriteChunks(w, chunks)
	}); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "summary.csv"), func(w io.Writer) error {
		return WriteSummaries(w, sums)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, "failures.csv"), func(w io.Writer) error {
		return WriteFailures(w, fails)
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
