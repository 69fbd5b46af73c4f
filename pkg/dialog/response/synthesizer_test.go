package response

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"school-assist-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	out     string
	err     error
	delay   time.Duration
	prompts []string
	options []*llm.Options
}

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.options = append(f.options, llm.Apply(llm.Options{}, opts...))
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.out, f.err
}

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantTier    Tier
		wantReply   string
		wantSummary string
	}{
		{
			name:        "well formed",
			raw:         `{"new_response": "Hello", "old_response_summary": "User greeted."}`,
			wantTier:    TierDirect,
			wantReply:   "Hello",
			wantSummary: "User greeted.",
		},
		{
			name:        "prefix tag single quotes missing comma",
			raw:         "[Raw LLM Output] {'new_response': 'hi' 'old_response_summary': 'sum'}",
			wantTier:    TierRepair,
			wantReply:   "hi",
			wantSummary: "sum",
		},
		{
			name:        "code fence and trailing text",
			raw:         "```json\n{\"new_response\": \"Here you go\", \"old_response_summary\": \"Asked for schools.\",}\n```\nHope this helps!",
			wantTier:    TierRepair,
			wantReply:   "Here you go",
			wantSummary: "Asked for schools.",
		},
		{
			name:        "truncated output",
			raw:         `{"new_response": "Partial", "old_response_summary": "cut off`,
			wantTier:    TierRepair,
			wantReply:   "Partial",
			wantSummary: "cut off",
		},
		{
			name:        "apostrophe inside value with single quoted keys",
			raw:         `{'new_response': "I couldn't find it", 'old_response_summary': 'sum'}`,
			wantTier:    TierRepair,
			wantReply:   "I couldn't find it",
			wantSummary: "sum",
		},
		{
			name:     "no braces at all",
			raw:      "I am a plain sentence",
			wantTier: TierFallback,
		},
		{
			name:     "missing key",
			raw:      `{"new_response": "only reply"}`,
			wantTier: TierFallback,
		},
		{
			name:     "array is not a mapping",
			raw:      `[1, 2, 3]`,
			wantTier: TierFallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, tier, err := ParseOutcome(tt.raw)
			assert.Equal(t, tt.wantTier, tier)
			if tt.wantTier == TierFallback {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantReply, outcome.Reply)
			assert.Equal(t, tt.wantSummary, outcome.UpdatedSummary)
		})
	}
}

func TestSynthesize_RepairRoundTrip(t *testing.T) {
	provider := &fakeProvider{out: "[Raw LLM Output] {'new_response': 'hi' 'old_response_summary': 'sum'}"}
	var tiers []Tier
	s := NewSynthesizer(provider, nil, WithTierObserver(func(t Tier) { tiers = append(tiers, t) }))

	outcome, tier := s.Synthesize(context.Background(), "School Assistant", "hello", "", "")

	assert.Equal(t, TierRepair, tier)
	assert.Equal(t, GenerationOutcome{Reply: "hi", UpdatedSummary: "sum"}, outcome)
	assert.Equal(t, []Tier{TierRepair}, tiers)
}

func TestSynthesize_FallbackKeepsSummary(t *testing.T) {
	provider := &fakeProvider{out: "not json"}
	s := NewSynthesizer(provider, nil)

	outcome, tier := s.Synthesize(context.Background(), "School Assistant", "hello", "previous summary", "")

	assert.Equal(t, TierFallback, tier)
	assert.Equal(t, FallbackReply, outcome.Reply)
	assert.Equal(t, "previous summary", outcome.UpdatedSummary)
}

func TestSynthesize_ProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("connection refused")}
	s := NewSynthesizer(provider, nil)

	outcome, tier := s.Synthesize(context.Background(), "School Assistant", "hello", "keep me", "")

	assert.Equal(t, TierFallback, tier)
	assert.Equal(t, "keep me", outcome.UpdatedSummary)
}

func TestSynthesize_TimeoutTakesFallback(t *testing.T) {
	provider := &fakeProvider{out: `{"new_response":"late","old_response_summary":"late"}`, delay: time.Second}
	s := NewSynthesizer(provider, nil, WithTimeout(20*time.Millisecond))

	start := time.Now()
	outcome, tier := s.Synthesize(context.Background(), "School Assistant", "hello", "s0", "")

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, TierFallback, tier)
	assert.Equal(t, "s0", outcome.UpdatedSummary)
}

func TestSynthesize_EmptySummaryNeverWipesThread(t *testing.T) {
	provider := &fakeProvider{out: `{"new_response":"ok","old_response_summary":""}`}
	s := NewSynthesizer(provider, nil)

	outcome, _ := s.Synthesize(context.Background(), "School Assistant", "hello", "earlier summary", "")
	assert.Equal(t, "earlier summary", outcome.UpdatedSummary)

	outcome, _ = s.Synthesize(context.Background(), "School Assistant", "hello", "", "")
	assert.NotEmpty(t, outcome.UpdatedSummary)
}

func TestSynthesize_InstructionCarriesContext(t *testing.T) {
	provider := &fakeProvider{out: `{"new_response":"ok","old_response_summary":"s1"}`}
	s := NewSynthesizer(provider, nil)

	s.Synthesize(context.Background(), "Scholarship Finder", "any scholarships?", "s0", "Name: Vidyasiri")

	require.Len(t, provider.prompts, 1)
	prompt := provider.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "Role: Scholarship Finder"))
	assert.Contains(t, prompt, "Name: Vidyasiri")
	assert.Contains(t, prompt, "Current chat summary:\ns0")
	assert.Contains(t, prompt, "User's new message:\nany scholarships?")
	assert.Equal(t, "chat_turn", provider.options[0].SchemaName)
}

func TestBuildInstruction_Defaults(t *testing.T) {
	prompt := BuildInstruction("School Assistant", "hi", "", "")

	assert.Contains(t, prompt, noInstructions)
	assert.Contains(t, prompt, noSummary)
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	kannada := "ಶಾಲೆ" // four 3-byte runes

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ಶ...", truncate(kannada, 4))
	assert.Equal(t, "ಶಾ...", truncate(kannada, 6))
	assert.True(t, utf8.ValidString(truncate(kannada, 5)))
}
