package controller

import (
	"errors"
	"strings"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/serverutils"
	"school-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEmailController interface {
	RegisterRoutes(r fiber.Router)
	SendMail(ctx *fiber.Ctx) error
}

type emailController struct {
	emailService service.IEmailService
}

func NewEmailController(emailService service.IEmailService) IEmailController {
	return &emailController{emailService: emailService}
}

func (c *emailController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/email")
	h.Post("/send-mail", c.SendMail)
}

func (c *emailController) SendMail(ctx *fiber.Ctx) error {
	var req dto.SendMailRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if strings.TrimSpace(req.RecipientEmail) == "" || strings.TrimSpace(req.Message) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(fiber.StatusBadRequest, "Missing recipient email or message"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	err := c.emailService.SendMail(ctx.UserContext(), serverutils.SessionID(ctx), &req)
	switch {
	case errors.Is(err, service.ErrEmailNotConfigured):
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(fiber.StatusInternalServerError, "Email credentials not set in environment"))
	case err != nil:
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(fiber.StatusInternalServerError, "Failed to send email"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Email sent successfully!", nil))
}
