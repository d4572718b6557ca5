package controller

import (
	"wiki-craft-be/internal/dto"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/internal/pkg/serverutils"
	"wiki-craft-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Chunks(ctx *fiber.Ctx) error
	Text(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ShowChunk(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService service.IDocumentService
}

func NewDocumentController(documentService service.IDocumentService) IDocumentController {
	return &documentController{
		documentService: documentService,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	r.Post("/ingest", c.Ingest)
	r.Get("/documents", c.List)
	r.Get("/documents/:id", c.Show)
	r.Get("/documents/:id/chunks", c.Chunks)
	r.Get("/documents/:id/text", c.Text)
	r.Delete("/documents/:id", c.Delete)
	r.Get("/chunks/:id", c.ShowChunk)
	r.Get("/stats", c.Stats)
}

func (c *documentController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.InvalidArgument("invalid request body: %v", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	results, err := c.documentService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(results)
}

func (c *documentController) List(ctx *fiber.Ctx) error {
	offset := ctx.QueryInt("offset", 0)
	limit := ctx.QueryInt("limit", 50)
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	res, err := c.documentService.List(ctx.Context(), offset, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *documentController) Chunks(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}
	offset := ctx.QueryInt("offset", 0)
	limit := ctx.QueryInt("limit", 50)
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	res, err := c.documentService.GetChunks(ctx.Context(), id, offset, limit)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *documentController) Text(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.GetText(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.Delete(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *documentController) ShowChunk(ctx *fiber.Ctx) error {
	id, err := parseIdParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.documentService.GetChunk(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *documentController) Stats(ctx *fiber.Ctx) error {
	res, err := c.documentService.Stats(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func parseIdParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := ctx.Params(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.InvalidArgument("invalid %s: %s", name, raw)
	}
	return id, nil
}
