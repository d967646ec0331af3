package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
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

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, target))
}

func authAs(userID uint, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		return c.Next()
	}
}

func setupProblemApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Problem{}))

	logger := zerolog.New(io.Discard)
	problemService := service.NewProblemService(repository.NewProblemRepository(db), validator.New(validator.WithRequiredStructEnabled()), logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test"}, router.Dependencies{
		ProblemHandler: handler.NewProblemHandler(problemService, logger),
		JWTMiddleware:  authAs(1, "student"),
	})

	return app, db
}

func TestProblemHandlerListFiltersByDifficulty(t *testing.T) {
	app, db := setupProblemApp(t)

	require.NoError(t, db.Create(&models.Problem{
		Title: "Two Sum", Description: "Find indices", Difficulty: "easy",
		Category: "arrays", Tags: "hash,array",
	}).Error)
	require.NoError(t, db.Create(&models.Problem{
		Title: "LRU Cache", Description: "Design a cache", Difficulty: "hard",
		Category: "design",
	}).Error)

	req := httptest.NewRequest("GET", "/api/v1/problems?difficulty=easy", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listResp struct {
		Success bool                    `json:"success"`
		Data    dto.ProblemListResponse `json:"data"`
	}
	decodeResponse(t, resp, &listResp)
	require.True(t, listResp.Success)
	require.EqualValues(t, 1, listResp.Data.Total)
	require.Len(t, listResp.Data.Problems, 1)
	require.Equal(t, "Two Sum", listResp.Data.Problems[0].Title)
	require.Equal(t, []string{"hash", "array"}, listResp.Data.Problems[0].Tags)
}

func TestProblemHandlerGetIncludesTestCases(t *testing.T) {
	app, db := setupProblemApp(t)

	problem := models.Problem{
		Title: "Reverse List", Description: "Reverse a linked list",
		Difficulty: "medium", TestCases: "1->2->3 => 3->2->1",
	}
	require.NoError(t, db.Create(&problem).Error)

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/v1/problems/%d", problem.ID), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var getResp struct {
		Data dto.ProblemResponse `json:"data"`
	}
	decodeResponse(t, resp, &getResp)
	require.Equal(t, problem.ID, getResp.Data.ID)
	require.Equal(t, "1->2->3 => 3->2->1", getResp.Data.TestCases)
}

func TestProblemHandlerGetUnknown(t *testing.T) {
	app, _ := setupProblemApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/problems/999", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
