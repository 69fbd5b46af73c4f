package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"school-assist-be/pkg/utils"
)

// Neural voices offered per language code
var voiceOptions = map[string][]string{
	"en": {"en-IN-NeerjaNeural", "en-IN-PrabhatNeural"},
	"hi": {"hi-IN-SwaraNeural", "hi-IN-MukeshNeural", "hi-IN-RaviNeural"},
	"kn": {"kn-IN-SapnaNeural", "kn-IN-GaganNeural"},
}

const (
	speechRate = "+20%"
	chunkSize  = 1500
)

// Speaker renders text to base64 MP3 through an HTTP TTS service
type Speaker struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	pick    func(n int) int
}

func NewSpeaker(baseURL string, timeout time.Duration) *Speaker {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Speaker{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
		pick:    rand.IntN,
	}
}

// Enabled reports whether a TTS service is configured
func (s *Speaker) Enabled() bool {
	return s != nil && s.baseURL != ""
}

// VoiceFor returns the session's voice for a language, choosing and storing one on first use
func (s *Speaker) VoiceFor(voices map[string]string, languageName string) string {
	code := Code(languageName)
	if v, ok := voices[code]; ok && v != "" {
		return v
	}
	options := voiceOptions[code]
	v := options[s.pick(len(options))]
	voices[code] = v
	return v
}

type speakRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
	Rate  string `json:"rate"`
}

// Speak returns base64 audio for text. Long text is split and the MP3 frames concatenated.
func (s *Speaker) Speak(ctx context.Context, text, voice string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty text")
	}
	if !s.Enabled() {
		return "", fmt.Errorf("tts is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var audio bytes.Buffer
	for _, chunk := range utils.SplitText(text, chunkSize) {
		data, err := s.synthesize(ctx, chunk, voice)
		if err != nil {
			return "", err
		}
		audio.Write(data)
	}
	if audio.Len() == 0 {
		return "", fmt.Errorf("tts returned no audio")
	}
	return base64.StdEncoding.EncodeToString(audio.Bytes()), nil
}

func (s *Speaker) synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	body, err := json.Marshal(speakRequest{Text: text, Voice: voice, Rate: speechRate})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/synthesize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}
