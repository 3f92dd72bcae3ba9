// Package summary reduces a document's chunk records to aggregate statistics.
package summary

import (
	"math"

	"gradient/internal/segmenter"
)

// Summary aggregates chunk statistics for one document. Dispersion values
// are population standard deviations.
type Summary struct {
	PDFName          string  `json:"pdf_name"`
	ChunkCount       int     `json:"chunk_count"`
	TotalCharacters  int     `json:"total_characters"`
	TotalTokens      int     `json:"total_tokens"`
	MeanCharacters   float64 `json:"mean_characters"`
	StdDevCharacters float64 `json:"stddev_characters"`
	MeanTokens       float64 `json:"mean_tokens"`
	StdDevTokens     float64 `json:"stddev_tokens"`
}

// Summarize is pure and total: an empty chunk slice yields a zeroed summary.
func Summarize(docName string, chunks []segmenter.Chunk) Summary {
	s := Summary{PDFName: docName, ChunkCount: len(chunks)}
	if len(chunks) == 0 {
		return s
	}

	for _, c := range chunks {
		s.TotalCharacters += c.CharacterCount
		s.TotalTokens += c.TokenCount
	}

	n := float64(len(chunks))
	s.MeanCharacters = float64(s.TotalCharacters) / n
	s.MeanTokens = float64(s.TotalTokens) / n

	var varChars, varTokens float64
	for _, c := range chunks {
		dc := float64(c.CharacterCount) - s.MeanCharacters
		dt := float64(c.TokenCount) - s.MeanTokens
		varChars += dc * dc
		varTokens += dt * dt
	}
	s.StdDevCharacters = math.Sqrt(varChars / n)
	s.StdDevTokens = math.Sqrt(varTokens / n)

	return s
}
