package controller

import (
	"school-assist-be/internal/dto"
	"school-assist-be/internal/pkg/serverutils"
	"school-assist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IReportController interface {
	RegisterRoutes(r fiber.Router)
	FileComplaint(ctx *fiber.Ctx) error
	ComplaintTypes(ctx *fiber.Ctx) error
	ReportEmergency(ctx *fiber.Ctx) error
	EmergencyTypes(ctx *fiber.Ctx) error
}

type reportController struct {
	reportService service.IReportService
}

func NewReportController(reportService service.IReportService) IReportController {
	return &reportController{reportService: reportService}
}

func (c *reportController) RegisterRoutes(r fiber.Router) {
	complaints := r.Group("/complaints")
	complaints.Post("/file-complaint", c.FileComplaint)
	complaints.Get("/complaint-types", c.ComplaintTypes)

	emergency := r.Group("/emergency")
	emergency.Post("/report-emergency", c.ReportEmergency)
	emergency.Get("/emergency-types", c.EmergencyTypes)
}

func (c *reportController) FileComplaint(ctx *fiber.Ctx) error {
	var req dto.FileComplaintRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.FileComplaint(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *reportController) ComplaintTypes(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get complaint types", c.reportService.ComplaintTypes()))
}

func (c *reportController) ReportEmergency(ctx *fiber.Ctx) error {
	var req dto.ReportEmergencyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.reportService.ReportEmergency(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Message, res))
}

func (c *reportController) EmergencyTypes(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Success get emergency types", c.reportService.EmergencyTypes()))
}
