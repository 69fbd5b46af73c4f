package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Tier records which stage of the parsing pipeline produced an outcome
type Tier string

const (
	TierDirect   Tier = "direct"
	TierRepair   Tier = "repair"
	TierFallback Tier = "fallback"
)

var ErrUnparseable = errors.New("model output is not a two-field object")

var (
	prefixTag      = regexp.MustCompile(`^\s*\[.*?\]\s*`)
	trailingComma  = regexp.MustCompile(`,\s*([}\]])`)
	missingComma   = regexp.MustCompile(`(?s)("` + KeyReply + `"\s*:\s*".*?")\s*("` + KeySummary + `"\s*:\s*")`)
	openingSingle  = regexp.MustCompile(`([{\[,:]\s*)'`)
	closingSingle  = regexp.MustCompile(`'(\s*[}\]:,])`)
	adjacentQuotes = regexp.MustCompile(`["'](\s+)['"]`)
	curlyDouble    = strings.NewReplacer("“", `"`, "”", `"`)
)

type quoteMode int

const (
	quoteAll quoteMode = iota
	quoteDelimiters
)

// parseDirect accepts the raw text only if it is already a well-formed two-field object
func parseDirect(raw string) (GenerationOutcome, error) {
	return decodeOutcome(strings.TrimSpace(raw))
}

// parseRepaired runs the heuristic repair pass. Quotes are first normalised wholesale;
// if that breaks apostrophes inside values, a second pass rewrites only quotes in
// delimiter positions.
func parseRepaired(raw string) (GenerationOutcome, error) {
	var lastErr error
	for _, mode := range []quoteMode{quoteAll, quoteDelimiters} {
		candidate, ok := repairJSON(raw, mode)
		if !ok {
			return GenerationOutcome{}, ErrUnparseable
		}
		outcome, err := decodeOutcome(candidate)
		if err == nil {
			return outcome, nil
		}
		lastErr = err
	}
	return GenerationOutcome{}, lastErr
}

func repairJSON(raw string, mode quoteMode) (string, bool) {
	s := prefixTag.ReplaceAllString(raw, "")

	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	s = s[start:]

	if end := strings.LastIndex(s, "}"); end != -1 {
		s = s[:end+1]
	}

	s = curlyDouble.Replace(s)
	switch mode {
	case quoteAll:
		s = strings.ReplaceAll(s, "'", `"`)
	case quoteDelimiters:
		s = openingSingle.ReplaceAllString(s, `$1"`)
		s = closingSingle.ReplaceAllString(s, `"$1`)
		s = adjacentQuotes.ReplaceAllString(s, `"$1"`)
	}

	s = trailingComma.ReplaceAllString(s, "$1")
	s = missingComma.ReplaceAllString(s, "$1, $2")

	if strings.Count(s, `"`)%2 != 0 {
		s += `"`
	}

	if deficit := strings.Count(s, "{") - strings.Count(s, "}"); deficit > 0 {
		s += strings.Repeat("}", deficit)
	}

	return s, true
}

func decodeOutcome(s string) (GenerationOutcome, error) {
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return GenerationOutcome{}, fmt.Errorf("decode model output: %w", err)
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return GenerationOutcome{}, ErrUnparseable
	}

	reply, ok := stringField(obj, KeyReply)
	if !ok {
		return GenerationOutcome{}, ErrUnparseable
	}
	summary, ok := stringField(obj, KeySummary)
	if !ok {
		return GenerationOutcome{}, ErrUnparseable
	}

	return GenerationOutcome{Reply: reply, UpdatedSummary: summary}, nil
}

func stringField(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64, bool:
		return fmt.Sprint(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

// ParseOutcome applies the direct and repair tiers. The caller owns the fallback.
func ParseOutcome(raw string) (GenerationOutcome, Tier, error) {
	if outcome, err := parseDirect(raw); err == nil {
		return outcome, TierDirect, nil
	}
	outcome, err := parseRepaired(raw)
	if err != nil {
		return GenerationOutcome{}, TierFallback, err
	}
	return outcome, TierRepair, nil
}
