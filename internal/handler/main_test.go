package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bcpschool/portal-api/internal/config"
	"github.com/bcpschool/portal-api/internal/handler"
	"github.com/bcpschool/portal-api/internal/middleware"
	"github.com/bcpschool/portal-api/internal/models"
	"github.com/bcpschool/portal-api/internal/repository"
	"github.com/bcpschool/portal-api/internal/router"
	"github.com/bcpschool/portal-api/internal/service"
)

const testPassword = "secret123"

// apiEnvelope mirrors utils.APIResponse with the data left raw so each test
// can decode it into the shape it expects.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// memoryStorage keeps uploaded names in memory so handler tests run without
// touching the filesystem.
type memoryStorage struct {
	mu    sync.Mutex
	names []string
}

func (m *memoryStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
	return "/" + name, nil
}

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithVisibility(t, false)
}

func newTestEnvWithVisibility(t *testing.T, strict bool) *testEnv {
	t.Helper()

	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, t.Name())
	dsn := "file:" + sanitized + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Assignment{}, &models.Submission{}, &models.Announcement{}))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())

	cfg := config.Config{
		AppName:          "portal-api-test",
		JWTSecret:        "handler-test-secret",
		TokenTTL:         time.Hour,
		UploadMaxMB:      5,
		StrictVisibility: strict,
	}

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	uploads := service.NewUploadGuard(&memoryStorage{}, cfg.UploadMaxMB, logger)

	authService := service.NewAuthService(userRepo, tokens, validate, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, uploads, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, uploads, cfg.StrictVisibility, logger)
	announcementService := service.NewAnnouncementService(announcementRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		BodyLimit: (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authService, logger),
		UserHandler:         handler.NewUserHandler(userService, logger),
		AssignmentHandler:   handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler:   handler.NewSubmissionHandler(submissionService, logger),
		AnnouncementHandler: handler.NewAnnouncementHandler(announcementService, logger),
		AuthGuard:           middleware.Authenticate(tokens, userRepo, logger),
	})

	return &testEnv{app: app, db: db}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) multipart(t *testing.T, method, path, token string, fields map[string]string, fileField, fileName string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) apiEnvelope {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(raw, &envelope), "body: %s", raw)
	return envelope
}

func (e *testEnv) register(t *testing.T, username, role string) uint {
	t.Helper()

	resp := e.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"password": testPassword,
		"email":    username + "@school.test",
		"role":     role,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var user struct {
		ID uint `json:"id"`
	}
	envelope := decodeEnvelope(t, resp)
	require.NoError(t, json.Unmarshal(envelope.Data, &user))
	require.NotZero(t, user.ID)
	return user.ID
}

func (e *testEnv) login(t *testing.T, username string) string {
	t.Helper()

	resp := e.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": username,
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
	}
	envelope := decodeEnvelope(t, resp)
	require.NoError(t, json.Unmarshal(envelope.Data, &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

// registerAndLogin is the common two-step used by almost every test.
func (e *testEnv) registerAndLogin(t *testing.T, username, role string) string {
	t.Helper()
	e.register(t, username, role)
	return e.login(t, username)
}

func assignmentForm(dueIn time.Duration) map[string]string {
	return map[string]string{
		"title":    "Algebra homework",
		"subject":  "Math",
		"due_date": time.Now().Add(dueIn).UTC().Format(time.RFC3339),
	}
}

func idFromData(t *testing.T, envelope apiEnvelope) uint {
	t.Helper()

	var entity struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &entity))
	require.NotZero(t, entity.ID)
	return entity.ID
}

func createAssignment(t *testing.T, env *testEnv, token string) uint {
	t.Helper()

	resp := env.multipart(t, fiber.MethodPost, "/api/assignments", token, assignmentForm(48*time.Hour), "", "", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return idFromData(t, decodeEnvelope(t, resp))
}

func createSubmission(t *testing.T, env *testEnv, token string, assignmentID uint, fileName string, content []byte) *http.Response {
	t.Helper()

	fields := map[string]string{"assignment_id": fmt.Sprint(assignmentID)}
	return env.multipart(t, fiber.MethodPost, "/api/submissions", token, fields, "file", fileName, content)
}
