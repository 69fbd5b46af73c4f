package domain

import (
	"fmt"
	"sort"
	"strings"

	"school-assist-be/pkg/dialog/intent"
	"school-assist-be/pkg/dialog/slot"
	"school-assist-be/pkg/retrieval"
)

const (
	IntentFindSchools      = "find_schools"
	IntentAdmission        = "admission"
	IntentFindScholarships = "find_scholarships"
	IntentAskCurriculum    = "ask_curriculum"
)

var schoolKeywords = intent.KeywordTable{
	{
		Intent: IntentFindSchools,
		Triggers: []string{
			"find", "school", "near", "nearby", "area", "location", "locality", "around me",
			"search for schools", "locate school", "schools in", "close to me", "nearest school",
			"lookup schools", "suggest schools", "schools near", "schools nearby", "good schools",
			"schools available", "list of schools", "where is the school", "school finder",
		},
	},
	{
		Intent: IntentAdmission,
		Triggers: []string{
			"admission", "apply", "submit", "enroll", "enrollment", "admissions open",
			"register", "registration", "how to join", "application process", "start admission",
			"seeking admission", "fill form", "fill application", "join school", "how to apply",
			"school entry", "when can i apply", "how to register", "apply for school",
		},
	},
}

var curriculumKeywords = intent.KeywordTable{
	{
		Intent: IntentAskCurriculum,
		Triggers: []string{
			"ncert", "chapter", "question", "answer", "explain", "what is", "what are", "define",
			"definition", "meaning of", "difference between", "why", "how does", "how do",
			"topic", "subject", "class", "grade", "solve", "syllabus", "textbook", "lesson",
		},
	},
}

// NearbySchools finds schools and takes admission requests
func NearbySchools() *Adapter {
	return &Adapter{
		Name:            NameNearbySchools,
		CorpusName:      retrieval.CorpusKarnatakaSchools,
		Keywords:        schoolKeywords,
		RetrievalIntent: IntentFindSchools,
		SlotIntent:      IntentAdmission,
		RequiredFields:  []string{slot.FieldStudentName, slot.FieldPhone, slot.FieldAddress},
		Role:            "School Finder and Admission Assistant",
		GroundingRole:   "School Finder and Admission Assistant",
		FormatRecord:    formatSchool,
		GroundingInstructions: func(rawData string) string {
			return "First apologize for making user to wait. " +
				"You are given raw school data. Your task is to extract structured information and present it in well-formed sentence format suitable for NLP processing. " +
				"The output must include the following details: school name, village, block, district, location, state management, school category, and school type. " +
				"Raw data: " + rawData + " " +
				"Format each output sentence clearly and consistently. Use only lowercase letters in the entire response. Store the result in `new_response`."
		},
		NotFoundMessage: "I couldn’t find any relevant schools. Please provide more details like village, block, or pincode.",
		SubmittedMessage: func(slots map[string]string) string {
			return fmt.Sprintf(
				"Thanks! Admission request submitted for %s.\nWe'll contact you at %s about schools near %s.",
				slots[slot.FieldStudentName], slots[slot.FieldPhone], slots[slot.FieldAddress],
			)
		},
	}
}

// Scholarships always looks the question up in the scholarship corpus
func Scholarships() *Adapter {
	return &Adapter{
		Name:            NameScholarships,
		CorpusName:      retrieval.CorpusIndianScholarships,
		RetrievalIntent: IntentFindScholarships,
		DefaultIntent:   IntentFindScholarships,
		Role:            "Scholarship Finder and Admission Assistant",
		GroundingRole:   "Scholarship Finder and Admission Assistant",
		FormatRecord:    formatScholarship,
		GroundingInstructions: func(rawData string) string {
			return "You are an assistant for providing scholarship information based on available data. " +
				"You have a dataset with details of scholarships, including Name, Eligibility, Amount, Deadline, and Documents Required. " +
				"USE DATA:" + rawData + " " +
				"Given the following raw scholarship data, summarize the scholarships as clearly as possible. " +
				"Please include the following fields for each scholarship: " +
				"Name, Eligibility, Amount, Deadline, and Documents Required."
		},
		NotFoundMessage: "I couldn’t find any relevant scholarships. Please provide more details like eligibility or scholarship amount.",
	}
}

// NCERTQuestions answers curriculum questions grounded in the NCERT question bank
func NCERTQuestions() *Adapter {
	return &Adapter{
		Name:            NameNCERTQuestions,
		CorpusName:      retrieval.CorpusNCERTBooks,
		Keywords:        curriculumKeywords,
		RetrievalIntent: IntentAskCurriculum,
		Role:            "NCERT Curriculum Tutor",
		GroundingRole:   "NCERT Curriculum Tutor",
		FormatRecord:    formatNCERT,
		GroundingInstructions: func(rawData string) string {
			return "You are a tutor for Indian school students from grade 6 to 12. " +
				"You are given related questions and answers from the NCERT question bank. " +
				"USE DATA:" + rawData + " " +
				"Answer the student's question in simple language using this material, mention the subject and grade it comes from, " +
				"and do not invent facts that are not supported by the material."
		},
		NotFoundMessage: "I couldn’t find this in the NCERT material. Please mention the subject, grade, or chapter.",
	}
}

// GeneralQuestions is open chat with no corpus
func GeneralQuestions() *Adapter {
	return &Adapter{
		Name:         NameGeneralQuestions,
		Role:         "General Education Assistant",
		FormatRecord: func(retrieval.Record) string { return "" },
	}
}

// Registry resolves adapters by route name
type Registry struct {
	adapters map[string]*Adapter
}

func NewRegistry(adapters ...*Adapter) *Registry {
	r := &Registry{adapters: make(map[string]*Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name] = a
	}
	return r
}

// DefaultRegistry wires every supported domain
func DefaultRegistry() *Registry {
	return NewRegistry(NearbySchools(), Scholarships(), NCERTQuestions(), GeneralQuestions())
}

func (r *Registry) Get(name string) (*Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatSchool(r retrieval.Record) string {
	if r.Get("school_name") == "" {
		return ""
	}
	return fmt.Sprintf(
		"- %s in %s, %s, %s, located at %s, managed by %s, category: %s, type: %s",
		r.Get("school_name"), r.Get("village"), r.Get("block"), r.Get("district"), r.Get("location"),
		r.Get("state_mgmt"), r.Get("school_category"), r.Get("school_type"),
	)
}

func formatScholarship(r retrieval.Record) string {
	if r.Get("Name") == "" {
		return ""
	}
	return fmt.Sprintf(
		"Name: %s; Eligibility: %s; Amount: %s; Deadline: %s; Documents Required: %s",
		CleanValue(r.Get("Name")), CleanValue(r.Get("Eligibility")), CleanValue(r.Get("Amount")),
		CleanValue(r.Get("Deadline")), CleanValue(r.Get("Documents Required")),
	)
}

func formatNCERT(r retrieval.Record) string {
	if r.Get("Question") == "" {
		return ""
	}
	return fmt.Sprintf(
		"Topic: %s. Q: %s A: %s | Subject: %s, Grade: %s, Difficulty: %s",
		r.Get("Topic"), r.Get("Question"), r.Get("Answer"),
		r.Get("subject"), r.Get("grade"), r.Get("Difficulty"),
	)
}

// CleanValue keeps the text after the first "-" of scholarship dataset cells,
// which carry a numbering prefix such as "12 - Post Matric Scholarship".
func CleanValue(v string) string {
	if _, after, found := strings.Cut(v, "-"); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(v)
}
