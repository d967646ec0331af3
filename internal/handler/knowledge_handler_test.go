package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/whrcat/cpplearn-api/internal/config"
	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/handler"
	"github.com/whrcat/cpplearn-api/internal/models"
	"github.com/whrcat/cpplearn-api/internal/repository"
	"github.com/whrcat/cpplearn-api/internal/router"
	"github.com/whrcat/cpplearn-api/internal/service"
)

func setupKnowledgeApp(t *testing.T, role string) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.KnowledgeArticle{}))

	logger := zerolog.New(io.Discard)
	knowledgeService := service.NewKnowledgeService(
		repository.NewKnowledgeRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		logger,
	)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		KnowledgeHandler: handler.NewKnowledgeHandler(knowledgeService, logger),
		JWTMiddleware:    authAs(1, role),
	})

	return app, db
}

func TestKnowledgeHandlerAdminCreatesArticle(t *testing.T) {
	app, _ := setupKnowledgeApp(t, "admin")

	body, err := json.Marshal(dto.KnowledgeArticleRequest{
		Title:    "Pointers in C",
		Category: "memory",
		Tags:     "pointers,basics",
		Content:  "<p>A pointer stores an address.</p><script>alert(1)</script>",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/knowledge", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createResp struct {
		Success bool                         `json:"success"`
		Data    dto.KnowledgeArticleResponse `json:"data"`
	}
	decodeResponse(t, resp, &createResp)
	require.True(t, createResp.Success)
	require.NotZero(t, createResp.Data.ID)
	require.Contains(t, createResp.Data.Content, "A pointer stores an address")
	require.NotContains(t, createResp.Data.Content, "script")
}

func TestKnowledgeHandlerStudentCannotWrite(t *testing.T) {
	app, _ := setupKnowledgeApp(t, "student")

	body, err := json.Marshal(dto.KnowledgeArticleRequest{
		Title: "Draft", Category: "misc", Content: "text",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/knowledge", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestKnowledgeHandlerListOmitsContentGetIncludesIt(t *testing.T) {
	app, db := setupKnowledgeApp(t, "student")

	article := models.KnowledgeArticle{
		Title: "RAII", Category: "idioms", Content: "<p>Scope-bound resources.</p>",
	}
	require.NoError(t, db.Create(&article).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/knowledge?category=idioms", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listResp struct {
		Data dto.KnowledgeListResponse `json:"data"`
	}
	decodeResponse(t, resp, &listResp)
	require.Len(t, listResp.Data.Articles, 1)
	require.Empty(t, listResp.Data.Articles[0].Content)

	resp, err = app.Test(httptest.NewRequest("GET", fmt.Sprintf("/api/v1/knowledge/%d", article.ID), nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var getResp struct {
		Data dto.KnowledgeArticleResponse `json:"data"`
	}
	decodeResponse(t, resp, &getResp)
	require.Contains(t, getResp.Data.Content, "Scope-bound resources")
	require.EqualValues(t, 1, getResp.Data.Views)
}
