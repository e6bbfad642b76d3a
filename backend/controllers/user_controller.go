package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aqib6220/lms/backend/config"
	"github.com/Aqib6220/lms/backend/middleware"
	"github.com/Aqib6220/lms/backend/models"
	"github.com/Aqib6220/lms/backend/storage"
	"github.com/Aqib6220/lms/backend/utils"
)

type UserController struct {
	DB    *mongo.Database
	Cfg   *config.Config
	Store *storage.MediaStore
	Log   *log.Logger
}

func NewUserController(db *mongo.Database, cfg *config.Config, store *storage.MediaStore, logger *log.Logger) *UserController {
	return &UserController{DB: db, Cfg: cfg, Store: store, Log: logger}
}

// GetUsers lists all accounts. Admin only (enforced by the route).
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	ctx := c.Context()

	cursor, err := uc.DB.Collection("users").Find(ctx, bson.M{"isDeleted": bson.M{"$ne": true}})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.Success(c, fiber.StatusOK, "", fiber.Map{"users": users})
}

// GetCurrentUser returns the caller's own profile.
func (uc *UserController) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid token")
	}
	return uc.findUser(c, userID)
}

// GetUserByID returns one profile by id. Admin only (enforced by the route).
func (uc *UserController) GetUserByID(c *fiber.Ctx) error {
	userID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}
	return uc.findUser(c, userID)
}

func (uc *UserController) findUser(c *fiber.Ctx, userID primitive.ObjectID) error {
	var user models.User
	if err := uc.DB.Collection("users").FindOne(c.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.Success(c, fiber.StatusOK, "", fiber.Map{"user": user})
}

// UpdateUser edits profile fields. A newly uploaded profile picture replaces
// the stored one, which is deleted best effort. Non-admins may only edit
// themselves.
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	ctx := c.Context()

	userID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	if middleware.UserRole(c) != models.RoleAdmin && middleware.UserID(c) != userID.Hex() {
		return utils.Fail(c, fiber.StatusForbidden, "Forbidden: You do not have access.")
	}

	var user models.User
	if err := uc.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	set := func(dst *string, field string) {
		if v := c.FormValue(field); v != "" {
			*dst = v
		}
	}
	set(&user.FullName, "fullName")
	set(&user.PhoneNumber, "phoneNumber")
	set(&user.Gender, "gender")

	if uploaded := middleware.FirstFileURL(c, "profilePicture"); uploaded != "" {
		if user.ProfilePicture != "" && user.ProfilePicture != uploaded {
			uc.Store.Delete(ctx, user.ProfilePicture, "image")
		}
		user.ProfilePicture = uploaded
	}

	user.UpdatedAt = time.Now()
	if _, err := uc.DB.Collection("users").ReplaceOne(ctx, bson.M{"_id": userID}, user); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.Success(c, fiber.StatusOK, "User updated successfully", fiber.Map{"user": user})
}

// DeleteUser soft-deletes an account: the document is kept with a deletion
// marker, matching how registration seeds isDeleted/deletedAt.
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	ctx := c.Context()

	userID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid user ID")
	}

	if middleware.UserRole(c) != models.RoleAdmin && middleware.UserID(c) != userID.Hex() {
		return utils.Fail(c, fiber.StatusForbidden, "Forbidden: You do not have access.")
	}

	now := time.Now()
	res, err := uc.DB.Collection("users").UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"isDeleted": true, "deletedAt": now, "tokens": []models.SessionToken{}, "updatedAt": now},
	})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if res.MatchedCount == 0 {
		return utils.Fail(c, fiber.StatusNotFound, "User not found")
	}

	return utils.Success(c, fiber.StatusOK, "User deleted successfully", nil)
}
