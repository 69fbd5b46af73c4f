package dto

type FileComplaintRequest struct {
	Type        string `json:"type" validate:"required"`
	Description string `json:"description" validate:"required"`
	StudentId   string `json:"student_id"`
	Anonymous   bool   `json:"anonymous"`
	Language    string `json:"language"`
}

type FileComplaintResponse struct {
	ComplaintId string `json:"complaint_id"`
	Message     string `json:"message"`
	NextSteps   string `json:"next_steps"`
}

type ReportEmergencyRequest struct {
	Type        string `json:"type" validate:"required"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location"`
	Contact     string `json:"contact"`
	Anonymous   bool   `json:"anonymous"`
}

type ReportEmergencyResponse struct {
	CaseId         string `json:"case_id"`
	Message        string `json:"message"`
	Priority       string `json:"priority"`
	ContactInfo    string `json:"contact_info"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

type ReportType struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
