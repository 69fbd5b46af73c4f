package domain

import (
	"testing"

	"school-assist-be/pkg/dialog/intent"
	"school-assist-be/pkg/retrieval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		adapter    *Adapter
		utterance  string
		activeFlow string
		want       string
	}{
		{"schools retrieval", NearbySchools(), "find schools near Jayanagar", "", IntentFindSchools},
		{"admission", NearbySchools(), "I want admission, my name is Ravi Kumar", "", IntentAdmission},
		{"find wins over admission", NearbySchools(), "find a school to apply", "", IntentFindSchools},
		{"no match is default", NearbySchools(), "hello there", "", intent.Default},
		{"active flow continues", NearbySchools(), "my number is 9876543210", IntentAdmission, IntentAdmission},
		{"scholarships always retrieve", Scholarships(), "anything for girls?", "", IntentFindScholarships},
		{"curriculum question", NCERTQuestions(), "What is photosynthesis", "", IntentAskCurriculum},
		{"curriculum greeting", NCERTQuestions(), "hi", "", intent.Default},
		{"general chat", GeneralQuestions(), "tell me a story", "", intent.Default},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.adapter.Resolve(tt.utterance, tt.activeFlow))
		})
	}
}

func TestKindOf(t *testing.T) {
	schools := NearbySchools()
	assert.Equal(t, KindRetrieve, schools.KindOf(IntentFindSchools))
	assert.Equal(t, KindSlotFill, schools.KindOf(IntentAdmission))
	assert.Equal(t, KindChat, schools.KindOf(intent.Default))

	general := GeneralQuestions()
	assert.Equal(t, KindChat, general.KindOf(intent.Default))
}

func TestFormatRecords(t *testing.T) {
	schools := NearbySchools()
	records := retrieval.Result{
		{"school_name": "GHPS Jayanagar", "village": "Jayanagar", "block": "South", "district": "Bangalore Urban",
			"location": "4th Block", "state_mgmt": "Department of Education", "school_category": "Primary", "school_type": "Co-educational"},
		{"village": "missing name is skipped"},
	}

	got := schools.FormatRecords(records)

	assert.Equal(t,
		"- GHPS Jayanagar in Jayanagar, South, Bangalore Urban, located at 4th Block, managed by Department of Education, category: Primary, type: Co-educational",
		got)
	assert.Contains(t, schools.Grounding(got), "Raw data: - GHPS Jayanagar")
}

func TestFormatScholarship_CleansValues(t *testing.T) {
	line := formatScholarship(retrieval.Record{
		"Name":               "3 - Vidyasiri",
		"Eligibility":        "Class 10 passed",
		"Amount":             "Rs - 15000",
		"Deadline":           "31 March",
		"Documents Required": "Marks card",
	})

	assert.Equal(t, "Name: Vidyasiri; Eligibility: Class 10 passed; Amount: 15000; Deadline: 31 March; Documents Required: Marks card", line)
}

func TestCleanValue(t *testing.T) {
	assert.Equal(t, "Post Matric", CleanValue("12 - Post Matric"))
	assert.Equal(t, "a-b", CleanValue("x -a-b"))
	assert.Equal(t, "plain", CleanValue("  plain "))
}

func TestSubmittedMessage(t *testing.T) {
	msg := NearbySchools().SubmittedMessage(map[string]string{
		"student_name": "Ravi Kumar",
		"phone":        "9876543210",
		"address":      "Jayanagar",
	})

	assert.Equal(t, "Thanks! Admission request submitted for Ravi Kumar.\nWe'll contact you at 9876543210 about schools near Jayanagar.", msg)
}

func TestIncompleteMessage(t *testing.T) {
	assert.Equal(t, "To proceed, please provide: phone, address.", IncompleteMessage([]string{"phone", "address"}))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	a, ok := r.Get(NameScholarships)
	require.True(t, ok)
	assert.Equal(t, retrieval.CorpusIndianScholarships, a.CorpusName)

	_, ok = r.Get("unknown")
	assert.False(t, ok)

	assert.Equal(t, []string{NameGeneralQuestions, NameNCERTQuestions, NameNearbySchools, NameScholarships}, r.Names())
}
