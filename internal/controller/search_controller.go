package controller

import (
	"strconv"
	"strings"

	"wiki-craft-be/internal/dto"
	"wiki-craft-be/internal/pkg/apperrors"
	"wiki-craft-be/internal/pkg/serverutils"
	"wiki-craft-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	SearchGet(ctx *fiber.Ctx) error
	Similar(ctx *fiber.Ctx) error
	Context(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
}

func NewSearchController(searchService service.ISearchService) ISearchController {
	return &searchController{
		searchService: searchService,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	r.Post("/search", c.Search)
	r.Get("/search", c.SearchGet)
	r.Get("/search/similar/:chunk_id", c.Similar)
	r.Get("/search/context/:chunk_id", c.Context)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperrors.InvalidArgument("invalid request body: %v", err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// SearchGet is the query-string form of Search, for quick manual use.
func (c *searchController) SearchGet(ctx *fiber.Ctx) error {
	minScore, err := parseScore(ctx.Query("min_score", "0"))
	if err != nil {
		return err
	}

	req := dto.SearchRequest{
		Query:    ctx.Query("q"),
		Limit:    ctx.QueryInt("limit", 0),
		MinScore: minScore,
	}
	if ids := ctx.Query("document_ids"); ids != "" {
		req.DocumentIds = strings.Split(ids, ",")
	}
	if types := ctx.Query("document_type"); types != "" {
		req.DocumentTypes = strings.Split(types, ",")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.searchService.Search(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *searchController) Similar(ctx *fiber.Ctx) error {
	chunkId, err := parseIdParam(ctx, "chunk_id")
	if err != nil {
		return err
	}

	res, err := c.searchService.Similar(ctx.Context(), chunkId, ctx.QueryInt("limit", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *searchController) Context(ctx *fiber.Ctx) error {
	chunkId, err := parseIdParam(ctx, "chunk_id")
	if err != nil {
		return err
	}

	res, err := c.searchService.Context(ctx.Context(), chunkId, ctx.QueryInt("window", 2))
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func parseScore(raw string) (float64, error) {
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.InvalidArgument("invalid min_score: %s", raw)
	}
	return score, nil
}
