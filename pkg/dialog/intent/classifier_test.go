package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var schoolTable = KeywordTable{
	{Intent: "find_schools", Triggers: []string{"find", "school", "near", "nearby"}},
	{Intent: "admission", Triggers: []string{"admission", "apply", "enroll"}},
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
	}{
		{name: "first rule matches", utterance: "Find schools near Jayanagar", want: "find_schools"},
		{name: "second rule matches", utterance: "I want ADMISSION for my son", want: "admission"},
		{name: "declaration order breaks ties", utterance: "apply to a school", want: "find_schools"},
		{name: "substring not token", utterance: "preschooler", want: "find_schools"},
		{name: "no match", utterance: "hello there", want: Default},
		{name: "empty", utterance: "   ", want: Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.utterance, schoolTable))
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.Equal(t, "admission", Classify("please enroll me", schoolTable))
	}
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("Yes, GO AHEAD", []string{"go ahead"}))
	assert.False(t, ContainsAny("nope", []string{"yes", ""}))
}
