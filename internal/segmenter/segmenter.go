// Package segmenter implements gradient chunking: a single-pass, stateful
// splitter that turns page-tagged text into bounded, semantically coherent
// chunks. Chunks grow toward a target size, flush only at sentence
// boundaries, keep pipe-delimited tables whole, and carry page attribution
// taken from in-band "## Page: N" markers.
package segmenter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenCounter reports the token count of a piece of text. It must be
// deterministic for identical input; no particular tokenization algorithm
// is assumed.
type TokenCounter func(text string) int

// Config is the chunk size envelope, in characters (runes).
type Config struct {
	TargetChar int // soft center of chunk size, advisory only
	MinChar    int // hard floor; smaller chunks are dropped after segmentation
	MaxChar    int // ceiling that triggers a flush of the previous chunk
}

// DefaultConfig returns the documented default envelope.
func DefaultConfig() Config {
	return Config{TargetChar: 500, MinChar: 200, MaxChar: 800}
}

// Validate checks the required precondition min < target < max.
func (c Config) Validate() error {
	if c.MinChar <= 0 || c.TargetChar <= 0 || c.MaxChar <= 0 {
		return fmt.Errorf("chunk thresholds must be positive: min=%d target=%d max=%d",
			c.MinChar, c.TargetChar, c.MaxChar)
	}
	if c.MinChar >= c.TargetChar || c.TargetChar >= c.MaxChar {
		return fmt.Errorf("chunk thresholds must satisfy min < target < max: min=%d target=%d max=%d",
			c.MinChar, c.TargetChar, c.MaxChar)
	}
	return nil
}

// Chunk is one finalized segment of a document, immutable once emitted.
type Chunk struct {
	PDFName        string `json:"pdf_name"`
	ChunkID        int    `json:"chunk_id"`
	PageNumber     int    `json:"page_number"`
	CharacterCount int    `json:"character_count"`
	TokenCount     int    `json:"token_count"`
	Content        string `json:"content"`
}

// Segmenter splits page-tagged text into gradient chunks. It holds no
// per-document state, so one Segmenter may be shared across goroutines
// processing different documents.
type Segmenter struct {
	cfg    Config
	tokens TokenCounter
}

// New validates the configuration and returns a Segmenter. A nil token
// counter or a non-monotonic threshold triple is a configuration error,
// reported before any processing begins.
func New(cfg Config, tokens TokenCounter) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tokens == nil {
		return nil, fmt.Errorf("token counter is required")
	}
	return &Segmenter{cfg: cfg, tokens: tokens}, nil
}

var pageMarkerRe = regexp.MustCompile(`^## Page:\s*(\d+)\s*$`)

// session is the mutable state for one document scan. Each Segment call
// owns exactly one session; nothing survives across calls.
type session struct {
	buffer    []string // pending lines not yet committed to the chunk
	sections  []string // committed sections of the chunk being built
	charCount int      // running rune count of committed sections
	page      int      // most recent page marker value, 1 before any marker
	inTable   bool
	emitted   []Chunk // pre-filter chunks, in emission order
}

// Segment scans pageTaggedText once, line by line, and returns the surviving
// chunks in order. It never fails on malformed input: lines it cannot
// classify are treated as plain text, unparseable markers leave the current
// page untouched, and degenerate documents yield an empty slice.
func (s *Segmenter) Segment(pageTaggedText, docName string) []Chunk {
	sess := &session{page: 1}

	for _, line := range strings.Split(pageTaggedText, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := pageMarkerRe.FindStringSubmatch(trimmed); m != nil {
			// Markers are metadata only: they never contribute content
			// and do not terminate a table block.
			if n, err := strconv.Atoi(m[1]); err == nil {
				sess.page = n
			}
			continue
		}

		if isTableRow(trimmed, sess.inTable) {
			// Tables are never split across chunks: rows accumulate in the
			// buffer as one pending unit until the block ends.
			sess.inTable = true
			sess.buffer = append(sess.buffer, line)
			continue
		}

		if sess.inTable {
			// A non-table line ends the block; commit the table whole
			// before handling the line as ordinary text.
			s.flush(sess)
			sess.inTable = false
		}

		sess.buffer = append(sess.buffer, line)
		if endsSentence(trimmed) {
			s.flush(sess)
		}
	}

	// Residual buffer, then the final in-progress chunk regardless of size.
	s.flush(sess)
	s.emit(sess)

	return s.filter(sess.emitted, docName)
}

// flush commits the buffered lines as one indivisible section of the current
// chunk. If appending would push the chunk past MaxChar and the chunk already
// has at least one section, the chunk is finalized first. A section is never
// split, so a single section longer than MaxChar still lands whole.
func (s *Segmenter) flush(sess *session) {
	section := strings.TrimSpace(strings.Join(sess.buffer, "\n"))
	sess.buffer = sess.buffer[:0]
	if section == "" {
		return
	}

	n := utf8.RuneCountInString(section)
	if sess.charCount+n > s.cfg.MaxChar && len(sess.sections) > 0 {
		s.emit(sess)
	}
	sess.sections = append(sess.sections, section)
	sess.charCount += n
}

// emit finalizes the in-progress chunk, attributing it to the current page
// at emission time.
func (s *Segmenter) emit(sess *session) {
	if len(sess.sections) == 0 {
		return
	}
	content := strings.Join(sess.sections, "\n")
	sess.emitted = append(sess.emitted, Chunk{
		PageNumber:     sess.page,
		CharacterCount: utf8.RuneCountInString(content),
		Content:        content,
	})
	sess.sections = sess.sections[:0]
	sess.charCount = 0
}

// filter drops chunks below MinChar and sequentially numbers the survivors.
// Undersized chunks are lost, never merged or padded.
func (s *Segmenter) filter(emitted []Chunk, docName string) []Chunk {
	var out []Chunk
	for _, c := range emitted {
		if c.CharacterCount < s.cfg.MinChar {
			continue
		}
		c.PDFName = docName
		c.ChunkID = len(out) + 1
		c.TokenCount = s.tokens(c.Content)
		out = append(out, c)
	}
	return out
}

// isTableRow classifies a trimmed line. A row starts and ends with a pipe;
// inside a table, separator lines made of pipes, dashes, and spaces also
// count so blocks like "---- | ----" do not break the table.
func isTableRow(trimmed string, inTable bool) bool {
	if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
		return true
	}
	if !inTable || trimmed == "" {
		return false
	}
	return strings.Trim(trimmed, "|- ") == ""
}

func endsSentence(trimmed string) bool {
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}
