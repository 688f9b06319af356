package embedding

import "context"

// Provider defines the interface for generating text embeddings
type Provider interface {
	// Embed converts one text into a fixed-dimension vector
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedMany converts a slice of texts in a single upstream call,
	// returning one vector per input in input order
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}
