package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguage(t *testing.T) {
	name, ok := NormalizeLanguage("  Kannada ")
	assert.True(t, ok)
	assert.Equal(t, Kannada, name)

	_, ok = NormalizeLanguage("french")
	assert.False(t, ok)

	assert.Equal(t, "kn", Code(Kannada))
	assert.Equal(t, "hi", Code("HINDI"))
	assert.Equal(t, "en", Code("klingon"))
	assert.Equal(t, "hi-IN", Locale(Hindi))
}

func TestTranslator(t *testing.T) {
	var got translateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k1", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"data":{"translations":[{"translatedText":"schools &amp; colleges"}]}}`))
	}))
	defer srv.Close()

	tr := NewTranslator(srv.URL, "k1", time.Second)

	out, err := tr.ToEnglish(context.Background(), "ಶಾಲೆಗಳು", Kannada)
	require.NoError(t, err)
	assert.Equal(t, "schools & colleges", out)
	assert.Equal(t, translateRequest{Q: "ಶಾಲೆಗಳು", Source: "kn", Target: "en", Format: "text"}, got)
}

func TestTranslator_EnglishIsPassthrough(t *testing.T) {
	tr := NewTranslator("", "", time.Second)

	out, err := tr.FromEnglish(context.Background(), "hello", English)

	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestTranslator_FailureKeepsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	out, err := NewTranslator(srv.URL, "k", time.Second).FromEnglish(context.Background(), "hello", Hindi)

	assert.Error(t, err)
	assert.Equal(t, "hello", out)
}

func TestSpeaker_VoiceIsSticky(t *testing.T) {
	s := NewSpeaker("http://tts", time.Second)
	calls := 0
	s.pick = func(n int) int {
		calls++
		return n - 1
	}
	voices := map[string]string{}

	first := s.VoiceFor(voices, Hindi)
	second := s.VoiceFor(voices, Hindi)

	assert.Equal(t, "hi-IN-RaviNeural", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]string{"hi": "hi-IN-RaviNeural"}, voices)
}

func TestSpeaker_Speak(t *testing.T) {
	var got speakRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/synthesize", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	audio, err := NewSpeaker(srv.URL, time.Second).Speak(context.Background(), "Hello there", "en-IN-NeerjaNeural")

	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ID3audio")), audio)
	assert.Equal(t, speakRequest{Text: "Hello there", Voice: "en-IN-NeerjaNeural", Rate: "+20%"}, got)
}

func TestSpeaker_Disabled(t *testing.T) {
	s := NewSpeaker("", time.Second)

	_, err := s.Speak(context.Background(), "hello", "en-IN-NeerjaNeural")

	assert.False(t, s.Enabled())
	assert.Error(t, err)
}
