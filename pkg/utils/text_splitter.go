package utils

import (
	"strings"
	"unicode"
)

// SplitText splits text into chunks of at most maxRunes runes for speech synthesis.
// A chunk ends at the last sentence break inside the window, else the last space,
// else it is cut hard. Chunks are trimmed and never empty.
func SplitText(text string, maxRunes int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return []string{text}
	}

	var chunks []string
	for len(runes) > maxRunes {
		cut := breakPoint(runes[:maxRunes])
		if chunk := strings.TrimSpace(string(runes[:cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = []rune(strings.TrimLeftFunc(string(runes[cut:]), unicode.IsSpace))
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		chunks = append(chunks, rest)
	}
	return chunks
}

// breakPoint returns the index just after the preferred boundary in window
func breakPoint(window []rune) int {
	space := -1
	for i := len(window) - 1; i > 0; i-- {
		switch window[i] {
		case '.', '!', '?', '।', '\n':
			return i + 1
		case ' ':
			if space < 0 {
				space = i
			}
		}
	}
	if space > 0 {
		return space
	}
	return len(window)
}
