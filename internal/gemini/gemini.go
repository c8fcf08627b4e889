package gemini

import (
	"context"
)

// ImageReader turns a single image into the text it shows.
type ImageReader interface {
	ReadImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
}

// TextGenerator answers a plain text prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Model is implemented by capabilities that can report which model they call.
type Model interface {
	Model() string
}
