package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aqib6220/lms/backend/config"
	"github.com/Aqib6220/lms/backend/middleware"
	"github.com/Aqib6220/lms/backend/models"
	"github.com/Aqib6220/lms/backend/storage"
	"github.com/Aqib6220/lms/backend/utils"
)

type LessonController struct {
	DB    *mongo.Database
	Cfg   *config.Config
	Store *storage.MediaStore
	Log   *log.Logger
}

func NewLessonController(db *mongo.Database, cfg *config.Config, store *storage.MediaStore, logger *log.Logger) *LessonController {
	return &LessonController{DB: db, Cfg: cfg, Store: store, Log: logger}
}

// CreateLesson adds a single lesson to an existing chapter and registers it
// on both the chapter's and the course's ordered lists.
func (lc *LessonController) CreateLesson(c *fiber.Ctx) error {
	ctx := c.Context()

	courseID, err := primitive.ObjectIDFromHex(c.Params("courseId"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	chapterID, err := primitive.ObjectIDFromHex(c.FormValue("chapterId"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid chapter ID")
	}

	if c.FormValue("title") == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "Lesson title is required")
	}

	var chapter models.Chapter
	if err := lc.DB.Collection("chapters").FindOne(ctx, bson.M{"_id": chapterID, "course": courseID}).Decode(&chapter); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "Chapter not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	videoType := c.FormValue("videoType")
	if videoType == "" {
		videoType = models.VideoTypeUpload
	}

	videoURL := ""
	if videoType == models.VideoTypeUpload {
		videoURL = middleware.FirstFileURL(c, "video")
	} else if videoType == models.VideoTypeYouTube {
		videoURL = c.FormValue("videoUrl")
	}

	order := len(chapter.Lessons)
	if v := c.FormValue("order"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			order = n
		}
	}

	now := time.Now()
	lesson := models.Lesson{
		ID:            primitive.NewObjectID(),
		Chapter:       chapterID,
		Course:        courseID,
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		VideoURL:      videoURL,
		VideoType:     videoType,
		NotesURL:      middleware.FirstFileURL(c, "pdf"),
		Duration:      c.FormValue("duration"),
		Order:         order,
		IsFreePreview: c.FormValue("isFreePreview") == "true",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := lc.DB.Collection("lessons").InsertOne(ctx, lesson); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to create lesson")
	}

	_, err = lc.DB.Collection("chapters").UpdateByID(ctx, chapterID, bson.M{
		"$push": bson.M{"lessons": lesson.ID},
		"$set":  bson.M{"updatedAt": now},
	})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
	_, err = lc.DB.Collection("courses").UpdateByID(ctx, courseID, bson.M{
		"$push": bson.M{"lessons": lesson.ID},
		"$set":  bson.M{"updatedAt": now},
	})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.Success(c, fiber.StatusCreated, "Lesson created successfully", fiber.Map{
		"lesson": lesson,
	})
}

// GetLessonsByCourse returns a course's lessons in display order.
func (lc *LessonController) GetLessonsByCourse(c *fiber.Ctx) error {
	ctx := c.Context()

	courseID, err := primitive.ObjectIDFromHex(c.Params("courseId"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	cursor, err := lc.DB.Collection("lessons").Find(ctx,
		bson.M{"course": courseID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	var lessons []models.Lesson
	if err := cursor.All(ctx, &lessons); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.Success(c, fiber.StatusOK, "", fiber.Map{"lessons": lessons})
}

// UpdateLesson updates one lesson. A newly uploaded video or notes file
// replaces the stored reference; the old one is deleted best effort.
func (lc *LessonController) UpdateLesson(c *fiber.Ctx) error {
	ctx := c.Context()

	lessonID, err := primitive.ObjectIDFromHex(c.Params("lessonId"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := lc.DB.Collection("lessons").FindOne(ctx, bson.M{"_id": lessonID}).Decode(&lesson); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "Lesson not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	set := func(dst *string, field string) {
		if v := c.FormValue(field); v != "" {
			*dst = v
		}
	}
	set(&lesson.Title, "title")
	set(&lesson.Description, "description")
	set(&lesson.Duration, "duration")
	set(&lesson.Subtitles, "subtitles")
	if v := c.FormValue("isFreePreview"); v != "" {
		lesson.IsFreePreview = v == "true"
	}
	if v := c.FormValue("unlocked"); v != "" {
		lesson.Unlocked = v == "true"
	}
	if v := c.FormValue("videoType"); v != "" {
		lesson.VideoType = v
	}

	if uploaded := middleware.FirstFileURL(c, "video"); uploaded != "" {
		if lesson.VideoURL != "" && lesson.VideoURL != uploaded {
			lc.Store.Delete(ctx, lesson.VideoURL, "video")
		}
		lesson.VideoURL = uploaded
	} else if lesson.VideoType == models.VideoTypeYouTube {
		set(&lesson.VideoURL, "videoUrl")
	}

	if uploaded := middleware.FirstFileURL(c, "pdf"); uploaded != "" {
		if lesson.NotesURL != "" && lesson.NotesURL != uploaded {
			lc.Store.Delete(ctx, lesson.NotesURL, "raw")
		}
		lesson.NotesURL = uploaded
	}

	lesson.UpdatedAt = time.Now()
	if _, err := lc.DB.Collection("lessons").ReplaceOne(ctx, bson.M{"_id": lessonID}, lesson); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.Success(c, fiber.StatusOK, "Lesson updated successfully", fiber.Map{
		"lesson": lesson,
	})
}

// DeleteLesson removes a lesson and pulls its id from the owning chapter
// and course lists.
func (lc *LessonController) DeleteLesson(c *fiber.Ctx) error {
	ctx := c.Context()

	lessonID, err := primitive.ObjectIDFromHex(c.Params("lessonId"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := lc.DB.Collection("lessons").FindOne(ctx, bson.M{"_id": lessonID}).Decode(&lesson); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "Lesson not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	if _, err := lc.DB.Collection("lessons").DeleteOne(ctx, bson.M{"_id": lessonID}); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	now := time.Now()
	lc.DB.Collection("chapters").UpdateByID(ctx, lesson.Chapter, bson.M{
		"$pull": bson.M{"lessons": lessonID},
		"$set":  bson.M{"updatedAt": now},
	})
	lc.DB.Collection("courses").UpdateByID(ctx, lesson.Course, bson.M{
		"$pull": bson.M{"lessons": lessonID},
		"$set":  bson.M{"updatedAt": now},
	})

	return utils.Success(c, fiber.StatusOK, "Lesson deleted successfully", nil)
}
