package tests

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Aqib6220/lms/backend/models"
)

func doForm(t *testing.T, method, path string, values url.Values, token string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestPartialUpdateUser(t *testing.T) {
	user := seedUser("patchme@example.com", "patchme", models.RoleLearner, false)
	token, _ := generateToken(user)

	// PATCH updates only the supplied fields.
	status, result := doForm(t, "PATCH", "/api/users/"+user.ID.Hex(),
		url.Values{"fullName": {"Patched Name"}}, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["success"])

	var updated models.User
	db.Collection("users").FindOne(context.Background(), bson.M{"_id": user.ID}).Decode(&updated)
	assert.Equal(t, "Patched Name", updated.FullName)
	assert.Equal(t, "patchme@example.com", updated.Email)

	// PUT goes through the same handler.
	status, _ = doForm(t, "PUT", "/api/users/"+user.ID.Hex(),
		url.Values{"phoneNumber": {"1234567890"}}, token)
	assert.Equal(t, fiber.StatusOK, status)

	db.Collection("users").FindOne(context.Background(), bson.M{"_id": user.ID}).Decode(&updated)
	assert.Equal(t, "Patched Name", updated.FullName)
	assert.Equal(t, "1234567890", updated.PhoneNumber)
}

func TestUpdateUserSelfOnly(t *testing.T) {
	target := seedUser("target@example.com", "target", models.RoleLearner, false)
	other := seedUser("other@example.com", "other", models.RoleLearner, false)
	otherToken, _ := generateToken(other)

	status, _ := doForm(t, "PATCH", "/api/users/"+target.ID.Hex(),
		url.Values{"fullName": {"Hijacked"}}, otherToken)
	assert.Equal(t, fiber.StatusForbidden, status)

	// Admins may edit anyone.
	status, _ = doForm(t, "PATCH", "/api/users/"+target.ID.Hex(),
		url.Values{"fullName": {"Renamed by admin"}}, adminToken)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	user := seedUser("leaving@example.com", "leaving", models.RoleLearner, false)
	token, _ := generateToken(user)

	status, _ := doJSON(t, "DELETE", "/api/users/"+user.ID.Hex(), nil, token)
	assert.Equal(t, fiber.StatusOK, status)

	var deleted models.User
	err := db.Collection("users").FindOne(context.Background(), bson.M{"_id": user.ID}).Decode(&deleted)
	assert.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.NotNil(t, deleted.DeletedAt)
	assert.Empty(t, deleted.Tokens)
}
