package dto

type SetLanguageRequest struct {
	Language string `json:"language" validate:"required"`
}

type LanguageResponse struct {
	Language string `json:"language"`
}
