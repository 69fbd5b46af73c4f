// Package retrieval defines the contract for grounding lookups against an ingested corpus.
package retrieval

import (
	"context"
	"errors"
	"strings"
)

const (
	CorpusKarnatakaSchools   = "karnataka_schools"
	CorpusIndianScholarships = "indian_scholarships"
	CorpusNCERTBooks         = "ncert_books"

	DefaultTopK = 5
)

var ErrUnknownCorpus = errors.New("unknown corpus")

var knownCorpora = map[string]bool{
	CorpusKarnatakaSchools:   true,
	CorpusIndianScholarships: true,
	CorpusNCERTBooks:         true,
}

// Record is one corpus row keyed by its source column names
type Record map[string]string

// Get returns the trimmed value of a column, or "" if absent
func (r Record) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// Result is ordered by relevance, most relevant first
type Result []Record

// Gateway looks up records relevant to a piece of text.
// Implementations return an empty Result rather than an error when nothing is relevant.
type Gateway interface {
	Query(ctx context.Context, corpus, text string, topK int) (Result, error)
}

// CheckCorpus returns ErrUnknownCorpus for names outside the ingested set
func CheckCorpus(name string) error {
	if !knownCorpora[name] {
		return ErrUnknownCorpus
	}
	return nil
}

// Corpora lists the supported corpus names
func Corpora() []string {
	return []string{CorpusKarnatakaSchools, CorpusIndianScholarships, CorpusNCERTBooks}
}
