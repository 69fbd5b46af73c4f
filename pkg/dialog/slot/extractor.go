package slot

import (
	"regexp"
	"strings"
)

const (
	FieldPhone       = "phone"
	FieldStudentName = "student_name"
	FieldAddress     = "address"
	FieldLocation    = "location"
	FieldEmail       = "email"
)

var (
	phonePattern = regexp.MustCompile(`\b\d{10}\b`)
	namePattern  = regexp.MustCompile(`(?i)\b(?:my name is|student name is)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)
	placePattern = regexp.MustCompile(`(?i)\b(?:address is|near|in)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`)

	// EmailPattern matches a single local@domain.tld token
	EmailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// Extract pulls values for the still-missing fields out of one utterance.
// Fields that are not found are left out of the result; the caller merges.
func Extract(utterance string, missing []string) map[string]string {
	result := make(map[string]string)
	for _, field := range missing {
		if value, ok := extractField(utterance, field); ok {
			result[field] = value
		}
	}
	return result
}

func extractField(utterance, field string) (string, bool) {
	switch field {
	case FieldPhone:
		if m := phonePattern.FindString(utterance); m != "" {
			return m, true
		}
	case FieldStudentName:
		return firstGroup(namePattern, utterance)
	case FieldAddress, FieldLocation:
		return firstGroup(placePattern, utterance)
	case FieldEmail:
		if m := EmailPattern.FindString(utterance); m != "" {
			return m, true
		}
	}
	return "", false
}

func firstGroup(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	value := strings.TrimSpace(m[1])
	if value == "" {
		return "", false
	}
	return value, true
}
