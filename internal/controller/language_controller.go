package controller

import (
	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/serverutils"
	"school-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILanguageController interface {
	RegisterRoutes(r fiber.Router)
	SetLanguage(ctx *fiber.Ctx) error
	GetLanguage(ctx *fiber.Ctx) error
}

type languageController struct {
	languageService service.ILanguageService
}

func NewLanguageController(languageService service.ILanguageService) ILanguageController {
	return &languageController{languageService: languageService}
}

func (c *languageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/language")
	h.Post("/set-language", c.SetLanguage)
	h.Get("/get-language", c.GetLanguage)
}

func (c *languageController) SetLanguage(ctx *fiber.Ctx) error {
	var req dto.SetLanguageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	// Empty and unsupported values are rejected by the service with its own messages
	language, err := c.languageService.SetLanguage(ctx.UserContext(), serverutils.SessionID(ctx), req.Language)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Language set to "+language, dto.LanguageResponse{Language: language}))
}

func (c *languageController) GetLanguage(ctx *fiber.Ctx) error {
	language, err := c.languageService.GetLanguage(ctx.UserContext(), serverutils.SessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get language", dto.LanguageResponse{Language: language}))
}
