package controller

import (
	"migratemate-be/internal/dto"
	"migratemate-be/internal/pkg/serverutils"
	"migratemate-be/internal/service"
	"migratemate-be/pkg/cancelflow/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICancellationController interface {
	RegisterRoutes(r fiber.Router)
	Open(ctx *fiber.Ctx) error
	SubmitIntent(ctx *fiber.Ctx) error
	Snapshot(ctx *fiber.Ctx) error
	ShowAttempt(ctx *fiber.Ctx) error
}

type cancellationController struct {
	cancellationService service.ICancellationService
}

func NewCancellationController(cancellationService service.ICancellationService) ICancellationController {
	return &cancellationController{
		cancellationService: cancellationService,
	}
}

func (c *cancellationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cancellation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("open", c.Open)
	h.Post("intent", c.SubmitIntent)
	h.Get("snapshot", c.Snapshot)
	h.Get("attempt/:id", c.ShowAttempt)
}

func (c *cancellationController) Open(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.OpenWorkflowRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.cancellationService.OpenWorkflow(ctx.Context(), userId, &req, ctx.Get("User-Agent"), ctx.IP())
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Subscription not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success open cancellation workflow", res))
}

func (c *cancellationController) SubmitIntent(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.IntentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.cancellationService.SubmitIntent(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit intent", res))
}

func (c *cancellationController) Snapshot(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.cancellationService.GetSnapshot(ctx.Context(), userId)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "No open cancellation workflow")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get snapshot", res))
}

func (c *cancellationController) ShowAttempt(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := validation.ValidateIdentifier("attempt_id", ctx.Params("id"))
	if err != nil {
		return err
	}

	res, err := c.cancellationService.ShowAttempt(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "Cancellation attempt not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show attempt", res))
}
