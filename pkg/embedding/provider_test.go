package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func magnitude(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func TestOllamaProvider_Generate(t *testing.T) {
	var got ollamaEmbeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float64{3, 4}})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "")
	vec, err := p.Generate(context.Background(), "schools near Jayanagar")

	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", got.Model)
	assert.Equal(t, "schools near Jayanagar", got.Prompt)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 1.0, magnitude(vec), 1e-6)
}

func TestOllamaProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Generate(context.Background(), "x")

	assert.ErrorContains(t, err, "model not found")
}

type fakeEmbeddings struct {
	body openai.EmbeddingNewParams
	res  *openai.CreateEmbeddingResponse
}

func (f *fakeEmbeddings) New(_ context.Context, body openai.EmbeddingNewParams, _ ...option.RequestOption) (*openai.CreateEmbeddingResponse, error) {
	f.body = body
	return f.res, nil
}

func TestOpenAIProvider_Generate(t *testing.T) {
	fake := &fakeEmbeddings{res: &openai.CreateEmbeddingResponse{
		Data: []openai.Embedding{{Embedding: []float64{0, 2}}},
	}}
	p := &OpenAIProvider{Model: "text-embedding-3-small", embeddings: fake}

	vec, err := p.Generate(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, vec)
	assert.Equal(t, int64(Dimensions), fake.body.Dimensions.Value)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	assert.IsType(t, &OllamaProvider{}, p)

	_, err = NewProvider(Config{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewProvider(Config{Provider: "gemini"})
	assert.Error(t, err)
}
