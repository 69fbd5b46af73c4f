package retrieval

import "fmt"

// DatasetPaths are the CSV files each corpus is ingested from by default
var DatasetPaths = map[string]string{
	CorpusKarnatakaSchools:   "datasets/karnataka-schools.csv",
	CorpusIndianScholarships: "datasets/indian_scholarship_providers.csv",
	CorpusNCERTBooks:         "datasets/NCERT_Dataset-6thTO12th.csv",
}

// FormatDocument renders the text that is embedded for one dataset row
func FormatDocument(corpus string, r Record) (string, error) {
	switch corpus {
	case CorpusKarnatakaSchools:
		return fmt.Sprintf("%s in %s, %s, %s - Category: %s, Type: %s, Status: %s",
			r.Get("school_name"), r.Get("village"), r.Get("block"), r.Get("district"),
			r.Get("school_category"), r.Get("school_type"), r.Get("school_status")), nil
	case CorpusIndianScholarships:
		return fmt.Sprintf("%s - Eligibility: %s, Amount: %s, Deadline: %s, Documents: %s",
			r.Get("Name"), r.Get("Eligibility"), r.Get("Amount"), r.Get("Deadline"), r.Get("Documents Required")), nil
	case CorpusNCERTBooks:
		return fmt.Sprintf("Topic: %s. Q: %s A: %s | Subject: %s, Grade: %s, Difficulty: %s, Time: %s",
			r.Get("Topic"), r.Get("Question"), r.Get("Answer"), r.Get("subject"),
			r.Get("grade"), r.Get("Difficulty"), r.Get("EstimatedTime")), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCorpus, corpus)
	}
}
