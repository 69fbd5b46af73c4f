package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Translator calls the Google Cloud Translation v2 REST API.
// Failures return the original text together with the error so callers can log and carry on.
type Translator struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

func NewTranslator(baseURL, apiKey string, timeout time.Duration) *Translator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Translator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{},
	}
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// ToEnglish translates from a session language; English input is returned untouched
func (t *Translator) ToEnglish(ctx context.Context, text, from string) (string, error) {
	return t.translate(ctx, text, Code(from), "en")
}

// FromEnglish translates into a session language; English output is returned untouched
func (t *Translator) FromEnglish(ctx context.Context, text, to string) (string, error) {
	return t.translate(ctx, text, "en", Code(to))
}

func (t *Translator) translate(ctx context.Context, text, source, target string) (string, error) {
	if source == target || strings.TrimSpace(text) == "" {
		return text, nil
	}
	if t.baseURL == "" || t.apiKey == "" {
		return text, fmt.Errorf("translation is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	body, err := json.Marshal(translateRequest{Q: text, Source: source, Target: target, Format: "text"})
	if err != nil {
		return text, err
	}

	endpoint := t.baseURL + "?key=" + url.QueryEscape(t.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return text, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return text, fmt.Errorf("translate %s->%s: %w", source, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return text, err
	}
	if resp.StatusCode != http.StatusOK {
		return text, fmt.Errorf("translate %s->%s: status %d: %s", source, target, resp.StatusCode, string(raw))
	}

	var parsed translateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return text, fmt.Errorf("decode translation: %w", err)
	}
	if len(parsed.Data.Translations) == 0 || parsed.Data.Translations[0].TranslatedText == "" {
		return text, fmt.Errorf("translate %s->%s: empty result", source, target)
	}

	return html.UnescapeString(parsed.Data.Translations[0].TranslatedText), nil
}
