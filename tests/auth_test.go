package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Aqib6220/lms/backend/models"
)

func doJSON(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestRegister(t *testing.T) {
	status, result := doJSON(t, "POST", "/api/auth/register", map[string]string{
		"fullName": "New User",
		"email":    "newuser@example.com",
		"password": "password123",
	}, "")

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, result["success"])

	var user models.User
	err := db.Collection("users").FindOne(context.Background(), bson.M{"email": "newuser@example.com"}).Decode(&user)
	assert.NoError(t, err)
	assert.Equal(t, "newuser", user.Username)
	assert.Equal(t, models.RoleLearner, user.Role)
	assert.NotEqual(t, "password123", user.Password)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	status, result := doJSON(t, "POST", "/api/auth/register", map[string]string{
		"fullName": "Again",
		"email":    "trainer@example.com",
		"password": "password123",
	}, "")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, result["success"])
}

func TestRegisterUsernameSuffix(t *testing.T) {
	status, _ := doJSON(t, "POST", "/api/auth/register", map[string]string{
		"fullName": "First",
		"email":    "sam@one.com",
		"password": "password123",
	}, "")
	assert.Equal(t, fiber.StatusCreated, status)

	status, _ = doJSON(t, "POST", "/api/auth/register", map[string]string{
		"fullName": "Second",
		"email":    "sam@two.com",
		"password": "password123",
	}, "")
	assert.Equal(t, fiber.StatusCreated, status)

	ctx := context.Background()
	var first, second models.User
	db.Collection("users").FindOne(ctx, bson.M{"email": "sam@one.com"}).Decode(&first)
	db.Collection("users").FindOne(ctx, bson.M{"email": "sam@two.com"}).Decode(&second)
	assert.Equal(t, "sam", first.Username)
	assert.Equal(t, "sam1", second.Username)
}

func TestLogin(t *testing.T) {
	status, result := doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email":    "trainer@example.com",
		"password": "password",
	}, "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["success"])
	assert.NotEmpty(t, result["token"])
	assert.NotEmpty(t, result["user"])

	// Login replaces the token list, so a second login leaves exactly one.
	status, _ = doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email":    "trainer@example.com",
		"password": "password",
	}, "")
	assert.Equal(t, fiber.StatusOK, status)

	var user models.User
	db.Collection("users").FindOne(context.Background(), bson.M{"email": "trainer@example.com"}).Decode(&user)
	assert.Len(t, user.Tokens, 1)
}

func TestLoginWrongPassword(t *testing.T) {
	status, result := doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email":    "trainer@example.com",
		"password": "wrong",
	}, "")

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid credentials", result["message"])
}

func TestLoginUnknownEmail(t *testing.T) {
	status, _ := doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password",
	}, "")

	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestLoginBannedUser(t *testing.T) {
	status, result := doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email":    "banned@example.com",
		"password": "password",
	}, "")

	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, false, result["success"])

	var user models.User
	db.Collection("users").FindOne(context.Background(), bson.M{"email": "banned@example.com"}).Decode(&user)
	assert.Empty(t, user.Tokens)
}

func TestChangePassword(t *testing.T) {
	user := seedUser("rotate@example.com", "rotate", models.RoleLearner, false)
	token, _ := generateToken(user)

	status, _ := doJSON(t, "PUT", "/api/auth/password", map[string]string{
		"currentPassword": "wrong",
		"newPassword":     "newpassword",
	}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, result := doJSON(t, "PUT", "/api/auth/password", map[string]string{
		"currentPassword": "password",
		"newPassword":     "newpassword",
	}, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["success"])

	status, _ = doJSON(t, "POST", "/api/auth/login", map[string]string{
		"email":    "rotate@example.com",
		"password": "newpassword",
	}, "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	status, result := doJSON(t, "GET", "/api/users/me", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Access denied. No token provided.", result["message"])

	status, _ = doJSON(t, "GET", "/api/users/me", nil, "not-a-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
