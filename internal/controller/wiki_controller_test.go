package controller

import (
	"context"
	"net/http/httptest"
	"testing"

	"wiki-craft-be/internal/dto"
	"wiki-craft-be/internal/entity"
	"wiki-craft-be/internal/pkg/logger"
	"wiki-craft-be/internal/pkg/serverutils"
	"wiki-craft-be/pkg/wiki"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWikiService struct {
	lastGenerate *dto.WikiGenerateRequest
	lastSection  *dto.WikiSectionRequest
	lastCompare  *dto.WikiCompareRequest
}

func (f *fakeWikiService) Generate(_ context.Context, req *dto.WikiGenerateRequest) (*dto.WikiGenerateResponse, error) {
	f.lastGenerate = req
	return &dto.WikiGenerateResponse{Entry: &entity.WikiEntry{Query: req.Query}, Format: wiki.FormatMarkdown}, nil
}

func (f *fakeWikiService) Section(_ context.Context, req *dto.WikiSectionRequest) (*dto.WikiSectionResponse, error) {
	f.lastSection = req
	return &dto.WikiSectionResponse{Heading: req.Topic, Sources: []entity.WikiSource{}}, nil
}

func (f *fakeWikiService) Compare(_ context.Context, req *dto.WikiCompareRequest) (*dto.WikiCompareResponse, error) {
	f.lastCompare = req
	return &dto.WikiCompareResponse{Query: req.Query, Sources: []wiki.DocumentComparison{}}, nil
}

func (f *fakeWikiService) Topics(_ context.Context, _ int) (*dto.WikiTopicsResponse, error) {
	return &dto.WikiTopicsResponse{Topics: []string{}}, nil
}

func newWikiApp(t *testing.T, svc *fakeWikiService) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: serverutils.ErrorHandler(logger.NewZapLogger(t.TempDir()+"/test.log", false)),
	})
	NewWikiController(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func TestGenerateGetReadsShortQueryParam(t *testing.T) {
	svc := &fakeWikiService{}
	app := newWikiApp(t, svc)

	res, err := app.Test(httptest.NewRequest("GET", "/api/wiki/generate?q=rivers", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.NotNil(t, svc.lastGenerate)
	assert.Equal(t, "rivers", svc.lastGenerate.Query)
}

func TestGenerateGetAcceptsLongQueryParam(t *testing.T) {
	svc := &fakeWikiService{}
	app := newWikiApp(t, svc)

	res, err := app.Test(httptest.NewRequest("GET", "/api/wiki/generate?query=rivers", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.NotNil(t, svc.lastGenerate)
	assert.Equal(t, "rivers", svc.lastGenerate.Query)
}

func TestGenerateGetMissingQueryRejected(t *testing.T) {
	app := newWikiApp(t, &fakeWikiService{})

	res, err := app.Test(httptest.NewRequest("GET", "/api/wiki/generate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}

func TestSectionAcceptsQueryParameters(t *testing.T) {
	svc := &fakeWikiService{}
	app := newWikiApp(t, svc)

	res, err := app.Test(httptest.NewRequest("POST", "/api/wiki/section?topic=erosion&context=rivers&max_sources=7", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.NotNil(t, svc.lastSection)
	assert.Equal(t, "erosion", svc.lastSection.Topic)
	assert.Equal(t, "rivers", svc.lastSection.Context)
	assert.Equal(t, 7, svc.lastSection.MaxSources)
}

func TestCompareAcceptsQueryParameters(t *testing.T) {
	svc := &fakeWikiService{}
	app := newWikiApp(t, svc)

	res, err := app.Test(httptest.NewRequest("POST", "/api/wiki/compare?query=deltas&max_per_source=4", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	require.NotNil(t, svc.lastCompare)
	assert.Equal(t, "deltas", svc.lastCompare.Query)
	assert.Equal(t, 4, svc.lastCompare.MaxPerSource)
}
