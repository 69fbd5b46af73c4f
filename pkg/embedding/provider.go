package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Dimensions is the vector width stored in corpus_records.embedding
const Dimensions = 768

// EmbeddingProvider turns text into a unit-length vector for cosine search
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
}

type Config struct {
	Provider string // "ollama" (default) or "openai"
	Model    string
	BaseURL  string
	APIKey   string
}

func NewProvider(cfg Config) (EmbeddingProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "ollama":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai embedding provider requires an api key")
		}
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// normalizeVector normalizes a vector to unit length (magnitude = 1)
// Cosine distance in pgvector expects normalized vectors
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
