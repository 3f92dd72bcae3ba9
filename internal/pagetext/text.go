package pagetext

import "io"

// TextProducer passes plain text through unchanged apart from UTF-8
// sanitation. Existing page markers are preserved; unmarked text is simply
// page 1 by the segmenter's default.
type TextProducer struct{}

func (p *TextProducer) Produce(r io.Reader, filename string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return sanitize(raw), nil
}
