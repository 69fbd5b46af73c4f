package controller

import (
	"errors"

	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/serverutils"
	"school-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
}

type assistantController struct {
	dialogService service.IDialogService
}

func NewAssistantController(dialogService service.IDialogService) IAssistantController {
	return &assistantController{
		dialogService: dialogService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	r.Post("/:domain/ask", c.Ask)
}

// Ask answers with the dialog envelope rather than serverutils.Response,
// which is what every channel client of the assistant parses.
func (c *assistantController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(askError("Please provide a question."))
	}
	req.Channel = dto.ChannelWeb

	res, err := c.dialogService.HandleTurn(ctx.UserContext(), ctx.Params("domain"), serverutils.SessionID(ctx), req)
	switch {
	case err == nil:
		if res.ConversationState == nil {
			res.ConversationState = map[string]string{}
		}
		return ctx.JSON(res)
	case errors.Is(err, serverutils.ErrValidation):
		return ctx.Status(fiber.StatusBadRequest).JSON(askError(serverutils.ValidationMessage(err)))
	case errors.Is(err, service.ErrUnknownDomain):
		return fiber.ErrNotFound
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(askError(serverutils.InternalErrorMessage))
	}
}

func askError(msg string) dto.AskError {
	return dto.AskError{Status: serverutils.StatusError, Response: msg}
}
