package dto

type SendMailRequest struct {
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
	Message        string `json:"message" validate:"required"`
	Title          string `json:"title"`
}
