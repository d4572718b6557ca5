package controller

import (
	"wiki-craft-be/internal/dto"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/internal/pkg/serverutils"
	"wiki-craft-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWikiController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	GenerateGet(ctx *fiber.Ctx) error
	Section(ctx *fiber.Ctx) error
	Compare(ctx *fiber.Ctx) error
	Topics(ctx *fiber.Ctx) error
}

type wikiController struct {
	wikiService service.IWikiService
}

func NewWikiController(wikiService service.IWikiService) IWikiController {
	return &wikiController{
		wikiService: wikiService,
	}
}

func (c *wikiController) RegisterRoutes(r fiber.Router) {
	r.Post("/wiki/generate", c.Generate)
	r.Get("/wiki/generate", c.GenerateGet)
	r.Post("/wiki/section", c.Section)
	r.Post("/wiki/compare", c.Compare)
	r.Get("/wiki/topics", c.Topics)
}

func (c *wikiController) Generate(ctx *fiber.Ctx) error {
	var req dto.WikiGenerateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.InvalidArgument("invalid request body: %v", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.wikiService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *wikiController) GenerateGet(ctx *fiber.Ctx) error {
	// The query-string form names the topic `q`; `query` is tolerated too.
	query := ctx.Query("q")
	if query == "" {
		query = ctx.Query("query")
	}
	req := dto.WikiGenerateRequest{
		Query:        query,
		MaxSources:   ctx.QueryInt("max_sources", 0),
		OutputFormat: ctx.Query("format"),
	}
	if raw := ctx.Query("include_sources"); raw != "" {
		include := raw == "true" || raw == "1"
		req.IncludeSources = &include
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.wikiService.Generate(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// Section accepts its parameters as query strings or as a JSON body; query
// strings win when both are present.
func (c *wikiController) Section(ctx *fiber.Ctx) error {
	var req dto.WikiSectionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperrors.InvalidArgument("invalid request body: %v", err)
		}
	}
	if topic := ctx.Query("topic"); topic != "" {
		req.Topic = topic
	}
	if hint := ctx.Query("context"); hint != "" {
		req.Context = hint
	}
	if maxSources := ctx.QueryInt("max_sources", 0); maxSources > 0 {
		req.MaxSources = maxSources
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.wikiService.Section(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *wikiController) Compare(ctx *fiber.Ctx) error {
	var req dto.WikiCompareRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperrors.InvalidArgument("invalid request body: %v", err)
		}
	}
	if query := ctx.Query("query"); query != "" {
		req.Query = query
	}
	if maxPerSource := ctx.QueryInt("max_per_source", 0); maxPerSource > 0 {
		req.MaxPerSource = maxPerSource
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.wikiService.Compare(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *wikiController) Topics(ctx *fiber.Ctx) error {
	res, err := c.wikiService.Topics(ctx.Context(), ctx.QueryInt("limit", 20))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
