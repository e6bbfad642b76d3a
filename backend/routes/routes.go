package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aqib6220/lms/backend/config"
	"github.com/Aqib6220/lms/backend/controllers"
	"github.com/Aqib6220/lms/backend/middleware"
	"github.com/Aqib6220/lms/backend/models"
	"github.com/Aqib6220/lms/backend/storage"
)

func SetupRoutes(app *fiber.App, db *mongo.Database, store *storage.MediaStore, cfg *config.Config, logger *log.Logger) {
	anyRole := []string{models.RoleAdmin, models.RoleLearner, models.RoleTrainer}

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Put("/api/auth/password", middleware.Protect(cfg, anyRole...), authController.ChangePassword)

	// User routes
	userController := controllers.NewUserController(db, cfg, store, logger)
	courseController := controllers.NewCourseController(db, cfg, store, logger)
	users := app.Group("/api/users")
	users.Get("/", middleware.Protect(cfg, models.RoleAdmin), userController.GetUsers)
	users.Get("/me", middleware.Protect(cfg, anyRole...), userController.GetCurrentUser)
	users.Get("/:id", middleware.Protect(cfg, models.RoleAdmin), userController.GetUserByID)
	users.Put("/:id", middleware.Protect(cfg, anyRole...),
		middleware.UploadSingle(store, "profilePicture", storage.TargetUser),
		userController.UpdateUser)
	users.Patch("/:id", middleware.Protect(cfg, anyRole...),
		middleware.UploadSingle(store, "profilePicture", storage.TargetUser),
		userController.UpdateUser)
	users.Delete("/:id", middleware.Protect(cfg, anyRole...), userController.DeleteUser)

	// Course routes
	courses := app.Group("/api/courses")
	courses.Get("/", courseController.GetAllCourses)
	courses.Get("/pending", middleware.Protect(cfg, models.RoleAdmin), courseController.GetPendingCourses)
	courses.Get("/mine", middleware.Protect(cfg, models.RoleTrainer), courseController.GetTrainerCourses)
	courses.Get("/enrolled/my", middleware.Protect(cfg, anyRole...), courseController.GetEnrolledCourses)
	courses.Post("/", middleware.Protect(cfg, models.RoleTrainer),
		middleware.UploadCourseFiles(store),
		middleware.WatermarkPDFs(store, cfg),
		courseController.CreateCourse)
	courses.Get("/:id", middleware.OptionalAuth(cfg), courseController.GetCourse)
	courses.Put("/:courseId", middleware.Protect(cfg, models.RoleTrainer, models.RoleAdmin),
		middleware.UploadCourseFiles(store),
		middleware.WatermarkPDFs(store, cfg),
		courseController.UpdateCourse)
	courses.Delete("/:courseId", middleware.Protect(cfg, models.RoleTrainer, models.RoleAdmin), courseController.DeleteCourse)
	courses.Patch("/:courseId/approval", middleware.Protect(cfg, models.RoleAdmin), courseController.UpdateCourseApproval)
	courses.Post("/:courseId/enroll", middleware.Protect(cfg, models.RoleLearner), courseController.EnrollCourse)

	// Lesson routes
	lessonController := controllers.NewLessonController(db, cfg, store, logger)
	lessons := app.Group("/api/lessons")
	lessons.Post("/create/:courseId", middleware.Protect(cfg, models.RoleTrainer),
		middleware.UploadSingle(store, "video", storage.TargetLesson),
		middleware.UploadSingle(store, "pdf", storage.TargetLesson),
		middleware.WatermarkPDFs(store, cfg),
		lessonController.CreateLesson)
	lessons.Get("/:courseId", middleware.Protect(cfg, models.RoleTrainer, models.RoleLearner), lessonController.GetLessonsByCourse)
	lessons.Put("/update/:lessonId", middleware.Protect(cfg, models.RoleTrainer),
		middleware.UploadSingle(store, "video", storage.TargetLesson),
		middleware.UploadSingle(store, "pdf", storage.TargetLesson),
		middleware.WatermarkPDFs(store, cfg),
		lessonController.UpdateLesson)
	lessons.Delete("/delete/:lessonId", middleware.Protect(cfg, models.RoleTrainer), lessonController.DeleteLesson)
}
