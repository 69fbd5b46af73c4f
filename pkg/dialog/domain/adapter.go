// Package domain holds the per-route data that parametrises the dialog orchestrator.
// Each adapter supplies keyword tables, corpus and prompts; control flow lives in the orchestrator.
package domain

import (
	"fmt"
	"strings"

	"school-assist-be/pkg/dialog/intent"
	"school-assist-be/pkg/retrieval"
)

// Kind is the handling branch an intent resolves to
type Kind int

const (
	KindChat Kind = iota
	KindRetrieve
	KindSlotFill
)

const (
	NameNearbySchools    = "nearby-schools"
	NameScholarships     = "scholarships"
	NameNCERTQuestions   = "ncert-questions"
	NameGeneralQuestions = "general-questions"
)

type Adapter struct {
	Name       string
	CorpusName string
	Keywords   intent.KeywordTable

	// RetrievalIntent triggers a corpus lookup; SlotIntent drives slot filling
	RetrievalIntent string
	SlotIntent      string
	RequiredFields  []string

	// DefaultIntent replaces intent.Default when set, e.g. a domain that always retrieves
	DefaultIntent string

	Role          string
	GroundingRole string

	FormatRecord          func(retrieval.Record) string
	GroundingInstructions func(rawData string) string
	NotFoundMessage       string
	SubmittedMessage      func(slots map[string]string) string
}

// Resolve classifies an utterance and applies the active-flow and default rules.
// An active slot flow continues when the utterance matches no intent at all.
func (a *Adapter) Resolve(utterance, activeFlow string) string {
	got := intent.Classify(utterance, a.Keywords)
	if got != intent.Default {
		return got
	}
	if activeFlow != "" && activeFlow == a.SlotIntent {
		return activeFlow
	}
	if a.DefaultIntent != "" {
		return a.DefaultIntent
	}
	return intent.Default
}

// KindOf maps an intent name to its handling branch
func (a *Adapter) KindOf(name string) Kind {
	switch {
	case a.SlotIntent != "" && name == a.SlotIntent:
		return KindSlotFill
	case a.RetrievalIntent != "" && name == a.RetrievalIntent && a.CorpusName != "":
		return KindRetrieve
	default:
		return KindChat
	}
}

// FormatRecords renders retrieved records one per line for grounding
func (a *Adapter) FormatRecords(records retrieval.Result) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		if line := a.FormatRecord(r); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Grounding wraps formatted records into the instructions given to the synthesizer
func (a *Adapter) Grounding(rawData string) string {
	if a.GroundingInstructions == nil {
		return rawData
	}
	return a.GroundingInstructions(rawData)
}

// IncompleteMessage prompts for the fields still missing, in declared order
func IncompleteMessage(missing []string) string {
	return fmt.Sprintf("To proceed, please provide: %s.", strings.Join(missing, ", "))
}
