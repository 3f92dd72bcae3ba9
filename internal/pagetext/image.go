package pagetext

import (
	"fmt"
	"io"

	"gradient/internal/ocr"
)

// ImageProducer recognizes text in a scanned page delivered as an image.
// It requires an OCR-enabled build; without one, Produce fails with the
// ocr package's sentinel error.
type ImageProducer struct{}

func (p *ImageProducer) Produce(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	client, err := ocr.New()
	if err != nil {
		return "", fmt.Errorf("ocr unavailable: %w", err)
	}
	defer client.Close()

	text, err := client.RecognizeImage(data)
	if err != nil {
		return "", fmt.Errorf("recognize image: %w", err)
	}
	return Marker(1) + "\n" + sanitize([]byte(text)), nil
}
