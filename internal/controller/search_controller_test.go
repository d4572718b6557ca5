package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"wiki-craft-be/internal/dto"
	"wiki-craft-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearchService struct {
	similarResults []entity.SearchResult
	lastWindow     int
}

func (f *fakeSearchService) Search(_ context.Context, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	return &dto.SearchResponse{Query: req.Query, Results: []entity.SearchResult{}}, nil
}

func (f *fakeSearchService) Similar(_ context.Context, _ uuid.UUID, _ int) ([]entity.SearchResult, error) {
	return f.similarResults, nil
}

func (f *fakeSearchService) Context(_ context.Context, chunkId uuid.UUID, window int) (*dto.ChunkContextResponse, error) {
	f.lastWindow = window
	return &dto.ChunkContextResponse{
		TargetChunk: dto.TargetChunk{Id: chunkId},
		Context:     []dto.ContextChunk{},
	}, nil
}

func newSearchApp(svc *fakeSearchService) *fiber.App {
	app := fiber.New()
	NewSearchController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func TestSimilarReturnsBareArray(t *testing.T) {
	chunkId := uuid.New()
	svc := &fakeSearchService{
		similarResults: []entity.SearchResult{
			{ChunkId: chunkId, Text: "related passage", Score: 0.9},
		},
	}
	app := newSearchApp(svc)

	res, err := app.Test(httptest.NewRequest("GET", "/api/search/similar/"+uuid.NewString(), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var results []entity.SearchResult
	require.NoError(t, json.Unmarshal(body, &results))
	require.Len(t, results, 1)
	assert.Equal(t, chunkId, results[0].ChunkId)
}

func TestContextWindowDefaultsToTwo(t *testing.T) {
	svc := &fakeSearchService{}
	app := newSearchApp(svc)

	res, err := app.Test(httptest.NewRequest("GET", "/api/search/context/"+uuid.NewString(), nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, 2, svc.lastWindow)
}

func TestContextWindowFromQuery(t *testing.T) {
	svc := &fakeSearchService{}
	app := newSearchApp(svc)

	res, err := app.Test(httptest.NewRequest("GET", "/api/search/context/"+uuid.NewString()+"?window=5", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, 5, svc.lastWindow)
}
