package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"google.golang.org/api/option"
)

// TextRecognizer turns a cropped image region into raw recognized text. It is
// a black-box boundary: the pipeline never retries a recognizer call, a
// failure simply yields no plate candidates from that image.
type TextRecognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// GoogleVision recognizes text with the Cloud Vision API.
type GoogleVision struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVision creates a recognizer authenticated by a service-account
// credentials file.
func NewGoogleVision(ctx context.Context, credentialsFile string) (*GoogleVision, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("ocr: create vision client: %w", err)
	}
	return &GoogleVision{client: client}, nil
}

// Recognize sends the region to the text-detection endpoint and returns the
// full recognized text block, or "" when nothing was read.
func (g *GoogleVision) Recognize(ctx context.Context, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return "", fmt.Errorf("ocr: encode region: %w", err)
	}

	vimg, err := vision.NewImageFromReader(&buf)
	if err != nil {
		return "", fmt.Errorf("ocr: build request image: %w", err)
	}

	annotations, err := g.client.DetectTexts(ctx, vimg, nil, 1)
	if err != nil {
		return "", fmt.Errorf("ocr: detect texts: %w", err)
	}
	if len(annotations) == 0 {
		return "", nil
	}
	return strings.TrimSpace(annotations[0].Description), nil
}

// Close releases the underlying API connection.
func (g *GoogleVision) Close() error {
	return g.client.Close()
}
