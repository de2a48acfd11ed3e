package handler_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/bcpschool/portal-api/internal/models"
)

func TestRegisterLoginAndAdminListUsers(t *testing.T) {
	env := newTestEnv(t)

	adminToken := env.registerAndLogin(t, "admin1", models.RoleAdmin)

	resp := env.request(t, fiber.MethodGet, "/api/users", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.True(t, envelope.Success)

	var users []struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &users))
	require.Len(t, users, 1)
	require.Equal(t, "admin1", users[0].Username)
	require.Equal(t, models.RoleAdmin, users[0].Role)

	// Credentials must never leak through the API surface.
	require.NotContains(t, strings.ToLower(string(envelope.Data)), "password")
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "eve",
		"password": testPassword,
		"email":    "eve@school.test",
		"role":     "principal",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	envelope := decodeEnvelope(t, resp)
	require.False(t, envelope.Success)
	require.Equal(t, "invalid role specified", envelope.Message)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "sam", models.RoleStudent)

	resp := env.request(t, fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "sam",
		"password": testPassword,
		"email":    "sam2@school.test",
		"role":     models.RoleStudent,
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "username or email already exists", decodeEnvelope(t, resp).Message)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "lena", models.RoleTeacher)

	resp := env.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "lena",
		"password": "not-the-password",
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid credentials", decodeEnvelope(t, resp).Message)
}

func TestLoginUnknownUserMatchesWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "ghost",
		"password": testPassword,
	})
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "invalid credentials", decodeEnvelope(t, resp).Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, fiber.MethodGet, "/api/assignments", "", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.request(t, fiber.MethodGet, "/api/assignments", "not-a-real-token", nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	env := newTestEnv(t)

	userID := env.register(t, "tmpuser", models.RoleStudent)
	token := env.login(t, "tmpuser")

	resp := env.request(t, fiber.MethodGet, "/api/assignments", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, env.db.Delete(&models.User{}, userID).Error)

	resp = env.request(t, fiber.MethodGet, "/api/assignments", token, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "user no longer exists", decodeEnvelope(t, resp).Message)
}

func TestNonAdminCannotListUsers(t *testing.T) {
	env := newTestEnv(t)

	teacherToken := env.registerAndLogin(t, "mr-t", models.RoleTeacher)

	resp := env.request(t, fiber.MethodGet, "/api/users", teacherToken, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.Equal(t, "insufficient permissions", decodeEnvelope(t, resp).Message)
}

func TestPasswordResetStubs(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "resetme", models.RoleStudent)

	resp := env.request(t, fiber.MethodPost, "/api/auth/request-password-reset", "", fiber.Map{
		"email": "resetme@school.test",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.request(t, fiber.MethodPost, "/api/auth/reset-password", "", fiber.Map{
		"token":        "opaque-reset-token",
		"new_password": "newsecret123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
