package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/Aqib6220/lms/backend/config"
	"github.com/Aqib6220/lms/backend/middleware"
	"github.com/Aqib6220/lms/backend/models"
	"github.com/Aqib6220/lms/backend/utils"
)

type AuthController struct {
	DB  *mongo.Database
	Cfg *config.Config
}

func NewAuthController(db *mongo.Database, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

// Register creates a learner account. The username is derived from the
// email's local part and suffixed until unique.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	type RegisterInput struct {
		FullName    string `json:"fullName"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		PhoneNumber string `json:"phoneNumber"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if input.Email == "" || input.Password == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "Email and password are required.")
	}

	users := ac.DB.Collection("users")

	count, err := users.CountDocuments(c.Context(), bson.M{"email": input.Email})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not query database")
	}
	if count > 0 {
		return utils.FailErr(c, utils.Wrap(utils.ErrConflict, "User with this email already exists."))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not hash password")
	}

	username := utils.DeriveUsername(input.Email, func(candidate string) bool {
		n, err := users.CountDocuments(c.Context(), bson.M{"username": candidate})
		return err == nil && n > 0
	})

	now := time.Now()
	user := models.User{
		ID:              primitive.NewObjectID(),
		FullName:        input.FullName,
		Username:        username,
		Email:           input.Email,
		Password:        string(hashedPassword),
		Role:            models.RoleLearner,
		PhoneNumber:     input.PhoneNumber,
		Gender:          "Other",
		EnrolledCourses: []primitive.ObjectID{},
		Tokens:          []models.SessionToken{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := users.InsertOne(c.Context(), user); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not create user")
	}

	return utils.Success(c, fiber.StatusCreated, "User registered successfully", fiber.Map{
		"user": user,
	})
}

// Login authenticates by email and password and issues a signed credential
// carrying the user's id and role. The credential replaces the user's
// session-token list.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	users := ac.DB.Collection("users")

	var user models.User
	if err := users.FindOne(c.Context(), bson.M{"email": input.Email}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not query database")
	}

	// Banned accounts never reach credential issuance.
	if user.IsBanned {
		return utils.Fail(c, fiber.StatusForbidden, "Your account has been banned. Contact support.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(user.ID.Hex(), user.Role, ac.Cfg)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not generate token")
	}

	_, err = users.UpdateByID(c.Context(), user.ID, bson.M{
		"$set": bson.M{
			"tokens":    []models.SessionToken{{Token: token}},
			"updatedAt": time.Now(),
		},
	})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not save session")
	}

	return utils.Success(c, fiber.StatusOK, "Login successful", fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.FullName,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// ChangePassword replaces the stored hash after verifying the current one.
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	type ChangePasswordInput struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	var input ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if input.CurrentPassword == "" || input.NewPassword == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "Please provide current and new password.")
	}

	userID, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid token")
	}

	users := ac.DB.Collection("users")

	var user models.User
	if err := users.FindOne(c.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not hash password")
	}

	_, err = users.UpdateByID(c.Context(), user.ID, bson.M{
		"$set": bson.M{"password": string(hashedPassword), "updatedAt": time.Now()},
	})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not update password")
	}

	return utils.Success(c, fiber.StatusOK, "Password changed successfully", nil)
}
