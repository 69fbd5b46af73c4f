package response

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"school-assist-be/pkg/dialog"
	"school-assist-be/pkg/llm"
)

// FallbackReply is returned when the model output cannot be recovered
const FallbackReply = "Sorry, I couldn't process that properly."

const defaultTimeout = 60 * time.Second

// GenerationOutcome is the parsed result of one generative call
type GenerationOutcome struct {
	Reply          string
	UpdatedSummary string
}

// Synthesizer turns a role, grounding and summary into a reply plus a new rolling summary
type Synthesizer struct {
	provider llm.LLMProvider
	logger   dialog.Logger
	timeout  time.Duration
	onTier   func(Tier)
}

type Option func(*Synthesizer)

// WithTimeout bounds each generative call; a timeout takes the fallback path
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTierObserver is notified of the parse tier of every call (used for metrics)
func WithTierObserver(fn func(Tier)) Option {
	return func(s *Synthesizer) {
		s.onTier = fn
	}
}

func NewSynthesizer(provider llm.LLMProvider, logger dialog.Logger, opts ...Option) *Synthesizer {
	if logger == nil {
		logger = dialog.NopLogger()
	}
	s := &Synthesizer{
		provider: provider,
		logger:   logger,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize never fails: on any upstream or parse failure it returns FallbackReply
// and passes the incoming summary through unchanged.
func (s *Synthesizer) Synthesize(ctx context.Context, role, utterance, summary, grounding string) (GenerationOutcome, Tier) {
	instruction := BuildInstruction(role, utterance, summary, grounding)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.provider.Generate(callCtx, instruction,
		llm.WithTemperature(0.3),
		llm.WithJSONSchema("chat_turn", OutputSchema),
	)
	if err != nil {
		details := map[string]interface{}{"error": err.Error(), "role": role}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			details["timeout"] = s.timeout.String()
		}
		s.logger.Warn("SYNTHESIZER", "Generation failed, using fallback reply", details)
		return s.fallback(summary), s.observe(TierFallback)
	}

	outcome, tier, err := ParseOutcome(raw)
	if err != nil || outcome.Reply == "" {
		s.logger.Warn("SYNTHESIZER", "Model output could not be parsed, using fallback reply", map[string]interface{}{
			"raw":   truncate(raw, 500),
			"error": fmt.Sprint(err),
		})
		return s.fallback(summary), s.observe(TierFallback)
	}

	if tier == TierRepair {
		s.logger.Info("SYNTHESIZER", "Recovered malformed model output", map[string]interface{}{
			"raw": truncate(raw, 500),
		})
	}

	// An empty summary from the model must not wipe the running thread
	if outcome.UpdatedSummary == "" {
		outcome.UpdatedSummary = carrySummary(summary, utterance, outcome.Reply)
	}

	return outcome, s.observe(tier)
}

func (s *Synthesizer) fallback(summary string) GenerationOutcome {
	return GenerationOutcome{Reply: FallbackReply, UpdatedSummary: summary}
}

func (s *Synthesizer) observe(t Tier) Tier {
	if s.onTier != nil {
		s.onTier(t)
	}
	return t
}

func carrySummary(previous, utterance, reply string) string {
	if strings.TrimSpace(previous) != "" {
		return previous
	}
	return fmt.Sprintf("The user said: %s The assistant replied: %s", utterance, reply)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
