package controller

import (
	"github.com/gofiber/fiber/v2"

	"reasonmed-be/internal/dto"
	"reasonmed-be/internal/pkg/serverutils"
	"reasonmed-be/internal/service"
)

type ICaseController interface {
	RegisterRoutes(r fiber.Router)
	IngestCase(ctx *fiber.Ctx) error
}

type caseController struct {
	ingestService service.IIngestService
}

func NewCaseController(ingestService service.IIngestService) ICaseController {
	return &caseController{
		ingestService: ingestService,
	}
}

func (c *caseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/case/v1")
	h.Post("", c.IngestCase)
}

func (c *caseController) IngestCase(ctx *fiber.Ctx) error {
	var req dto.IngestCaseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.ingestService.IngestCase(ctx.Context(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(res)
}
