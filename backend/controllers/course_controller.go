package controllers

import (
	"errors"
	"fmt"
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

type CourseController struct {
	DB    *mongo.Database
	Cfg   *config.Config
	Store *storage.MediaStore
	Log   *log.Logger
}

func NewCourseController(db *mongo.Database, cfg *config.Config, store *storage.MediaStore, logger *log.Logger) *CourseController {
	return &CourseController{DB: db, Cfg: cfg, Store: store, Log: logger}
}

// CreateCourse persists a new course with status pending, then its chapters
// and lessons in request order. Uploaded lesson videos and notes are consumed
// sequentially as the lesson arrays are walked.
func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	ctx := c.Context()

	var trainer models.User
	trainerID, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err == nil {
		err = cc.DB.Collection("users").FindOne(ctx, bson.M{"_id": trainerID}).Decode(&trainer)
	}
	if err != nil || trainer.Role != models.RoleTrainer {
		return utils.Fail(c, fiber.StatusForbidden, "Only trainers can create courses")
	}

	files := middleware.Files(c)
	thumbnail := middleware.FirstFileURL(c, "thumbnail")

	priceRaw := c.FormValue("price")
	price, priceErr := strconv.ParseFloat(priceRaw, 64)

	if c.FormValue("title") == "" ||
		c.FormValue("description") == "" ||
		c.FormValue("category") == "" ||
		priceRaw == "" || priceErr != nil ||
		c.FormValue("duration") == "" ||
		c.FormValue("courseLevel") == "" ||
		thumbnail == "" {
		middleware.CleanupUploads(c, cc.Store)
		return utils.Fail(c, fiber.StatusBadRequest, "Missing required fields")
	}

	syllabus := decodeArray[models.SyllabusItem](c.FormValue("syllabus"))
	for _, item := range syllabus {
		if item.Title == "" || item.Description == "" {
			middleware.CleanupUploads(c, cc.Store)
			return utils.Fail(c, fiber.StatusBadRequest, "Invalid syllabus format: each syllabus item must have a title and description.")
		}
	}

	now := time.Now()
	course := models.Course{
		ID:                     primitive.NewObjectID(),
		Title:                  c.FormValue("title"),
		Description:            c.FormValue("description"),
		Category:               c.FormValue("category"),
		Thumbnail:              thumbnail,
		Price:                  price,
		Duration:               c.FormValue("duration"),
		Prerequisites:          stringList(c.FormValue("prerequisites")),
		CourseLevel:            c.FormValue("courseLevel"),
		CertificationAvailable: c.FormValue("certificationAvailable") == "true",
		Language:               c.FormValue("language"),
		Board:                  c.FormValue("board"),
		ClassLevel:             c.FormValue("classLevel"),
		Subject:                c.FormValue("subject"),
		TargetAudience:         c.FormValue("targetAudience"),
		Syllabus:               syllabus,
		CourseDocuments: models.CourseDocuments{
			SyllabusPdf:       middleware.FirstFileURL(c, "courseSyllabusPdf"),
			NotesPdf:          middleware.FirstFileURL(c, "courseNotesPdf"),
			PreviousPapersPdf: middleware.FirstFileURL(c, "coursePreviousPapersPdf"),
		},
		CourseNotes:    titledDocuments(files["courseNotes"], decodeArray[TitledMeta](c.FormValue("courseNotesMeta")), "Note", 0),
		PreviousPapers: titledDocuments(files["previousPapers"], decodeArray[TitledMeta](c.FormValue("previousPapersMeta")), "Paper", 0),
		Chapters:       []primitive.ObjectID{},
		Lessons:        []primitive.ObjectID{},
		Status:         models.StatusPending,
		Trainer:        trainer.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := cc.DB.Collection("courses").InsertOne(ctx, course); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to create course")
	}

	// Chapter/lesson creation is best effort: a failure here is logged and
	// does not roll back the already-saved course.
	if err := cc.createChapters(c, &course); err != nil {
		cc.Log.Printf("failed to create chapters/lessons during course creation: %v", err)
	}

	return utils.Success(c, fiber.StatusCreated, "Course created successfully and is pending admin approval", fiber.Map{
		"course": course,
	})
}

func (cc *CourseController) createChapters(c *fiber.Ctx, course *models.Course) error {
	ctx := c.Context()
	chaptersData := decodeArray[ChapterInput](c.FormValue("chapters"))
	if len(chaptersData) == 0 {
		return nil
	}

	files := middleware.Files(c)
	videoFiles := files["lessonVideos"]
	pdfFiles := files["lessonNotes"]
	videoIndex := 0
	pdfIndex := 0

	now := time.Now()
	for chapterIdx, chapterMeta := range chaptersData {
		chapter := models.Chapter{
			ID:          primitive.NewObjectID(),
			Course:      course.ID,
			Title:       chapterMeta.Title,
			Description: chapterMeta.Description,
			Order:       chapterIdx,
			Lessons:     []primitive.ObjectID{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if chapter.Title == "" {
			chapter.Title = fmt.Sprintf("Chapter %d", chapterIdx+1)
		}

		if _, err := cc.DB.Collection("chapters").InsertOne(ctx, chapter); err != nil {
			return err
		}
		course.Chapters = append(course.Chapters, chapter.ID)

		for lessonIdx, lessonMeta := range chapterMeta.Lessons {
			videoURL := ""
			if lessonMeta.VideoType == models.VideoTypeUpload && videoIndex < len(videoFiles) {
				videoURL = videoFiles[videoIndex].URL
				videoIndex++
			} else if lessonMeta.VideoType == models.VideoTypeYouTube && lessonMeta.VideoURL != "" {
				videoURL = lessonMeta.VideoURL
			}

			notesURL := ""
			if bool(lessonMeta.HasNotes) && pdfIndex < len(pdfFiles) {
				notesURL = pdfFiles[pdfIndex].URL
				pdfIndex++
			}

			lesson := models.Lesson{
				ID:            primitive.NewObjectID(),
				Chapter:       chapter.ID,
				Course:        course.ID,
				Title:         lessonMeta.Title,
				Description:   lessonMeta.Description,
				VideoURL:      videoURL,
				VideoType:     lessonMeta.VideoType,
				NotesURL:      notesURL,
				Duration:      lessonMeta.Duration,
				Order:         lessonIdx,
				IsFreePreview: bool(lessonMeta.IsFreePreview),
				Subtitles:     lessonMeta.Subtitles,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if lesson.Title == "" {
				lesson.Title = fmt.Sprintf("Lesson %d", lessonIdx+1)
			}
			if lesson.VideoType == "" {
				lesson.VideoType = models.VideoTypeUpload
			}

			if _, err := cc.DB.Collection("lessons").InsertOne(ctx, lesson); err != nil {
				return err
			}
			chapter.Lessons = append(chapter.Lessons, lesson.ID)
			course.Lessons = append(course.Lessons, lesson.ID)
		}

		_, err := cc.DB.Collection("chapters").UpdateByID(ctx, chapter.ID, bson.M{
			"$set": bson.M{"lessons": chapter.Lessons, "updatedAt": time.Now()},
		})
		if err != nil {
			return err
		}
	}

	_, err := cc.DB.Collection("courses").UpdateByID(ctx, course.ID, bson.M{
		"$set": bson.M{"chapters": course.Chapters, "lessons": course.Lessons, "updatedAt": time.Now()},
	})
	return err
}

// UpdateCourseApproval moves a pending course to approved or rejected.
// Rejection requires a reason; the reason is cleared otherwise.
func (cc *CourseController) UpdateCourseApproval(c *fiber.Ctx) error {
	type ApprovalInput struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejectionReason"`
	}

	if middleware.UserRole(c) != models.RoleAdmin {
		return utils.Fail(c, fiber.StatusForbidden, "Only admins can approve or reject courses")
	}

	courseID, err := primitive.ObjectIDFromHex(c.Params("courseId"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	var input ApprovalInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if input.Status != models.StatusApproved && input.Status != models.StatusRejected {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid status value")
	}
	if input.Status == models.StatusRejected && input.RejectionReason == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "Rejection reason is required")
	}

	adminID, _ := primitive.ObjectIDFromHex(middleware.UserID(c))
	reason := ""
	if input.Status == models.StatusRejected {
		reason = input.RejectionReason
	}

	now := time.Now()
	res := cc.DB.Collection("courses").FindOneAndUpdate(c.Context(),
		bson.M{"_id": courseID},
		bson.M{"$set": bson.M{
			"status":          input.Status,
			"approvedBy":      adminID,
			"approvalDate":    now,
			"rejectionReason": reason,
			"updatedAt":       now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var course models.Course
	if err := res.Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "Course not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.Success(c, fiber.StatusOK, fmt.Sprintf("Course %s successfully", input.Status), fiber.Map{
		"course": course,
	})
}

// GetAllCourses returns approved courses, newest first.
func (cc *CourseController) GetAllCourses(c *fiber.Ctx) error {
	ctx := c.Context()

	cursor, err := cc.DB.Collection("courses").Find(ctx,
		bson.M{"status": models.StatusApproved},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}),
	)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.Success(c, fiber.StatusOK, "All approved courses fetched successfully", fiber.Map{
		"courses": cc.withTrainers(c, courses),
	})
}

// GetPendingCourses returns courses awaiting approval. Admin only.
func (cc *CourseController) GetPendingCourses(c *fiber.Ctx) error {
	if middleware.UserRole(c) != models.RoleAdmin {
		return utils.Fail(c, fiber.StatusForbidden, "Only admins can view pending courses")
	}

	ctx := c.Context()
	cursor, err := cc.DB.Collection("courses").Find(ctx, bson.M{"status": models.StatusPending})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	result := cc.withTrainers(c, courses)
	for i, course := range courses {
		result[i]["lessonDocs"] = cc.lessonsOf(c, course.ID)
	}

	return utils.Success(c, fiber.StatusOK, "", fiber.Map{"courses": result})
}

// GetCourse returns one course with its chapters and lessons in display
// order. Non-approved courses are visible only to admins and the owning
// trainer.
func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	ctx := c.Context()

	courseID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Collection("courses").FindOne(ctx, bson.M{"_id": courseID}).Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "Course not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	isPrivileged := middleware.UserRole(c) == models.RoleAdmin ||
		middleware.UserID(c) == course.Trainer.Hex()
	if course.Status != models.StatusApproved && !isPrivileged {
		return utils.Fail(c, fiber.StatusForbidden, "This course is not available")
	}

	chapterCursor, err := cc.DB.Collection("chapters").Find(ctx,
		bson.M{"course": course.ID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
	var chapters []models.Chapter
	if err := chapterCursor.All(ctx, &chapters); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	chapterViews := make([]fiber.Map, 0, len(chapters))
	for _, chapter := range chapters {
		lessonCursor, err := cc.DB.Collection("lessons").Find(ctx,
			bson.M{"chapter": chapter.ID},
			options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}}),
		)
		if err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
		}
		var lessons []models.Lesson
		if err := lessonCursor.All(ctx, &lessons); err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
		}
		chapterViews = append(chapterViews, fiber.Map{
			"chapter":    chapter,
			"lessonDocs": lessons,
		})
	}

	return utils.Success(c, fiber.StatusOK, "", fiber.Map{
		"course":   course,
		"chapters": chapterViews,
		"trainer":  cc.trainerSummary(c, course.Trainer),
	})
}

// UpdateCourse applies a partial update to the course aggregate inside one
// database transaction. Replaced media references are queued and deleted
// only after the transaction commits; an abort deletes nothing.
func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	ctx := c.Context()

	courseID, err := primitive.ObjectIDFromHex(c.Params("courseId"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	session, err := cc.DB.Client().StartSession()
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
	defer session.EndSession(ctx)

	queue := &mediaQueue{}
	var course models.Course

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		queue.Reset() // the callback may be retried
		return nil, cc.applyCourseUpdate(c, sc, courseID, queue, &course)
	})
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) || errors.Is(err, utils.ErrValidation) {
			return utils.FailErr(c, err)
		}
		return utils.Fail(c, fiber.StatusInternalServerError, "Error updating course: "+err.Error())
	}

	// The external store has no transactional semantics; replaced media is
	// removed strictly after commit, best effort.
	for _, ref := range queue.items {
		cc.Store.Delete(ctx, ref.url, ref.hint)
	}

	return utils.Success(c, fiber.StatusOK, "Course updated successfully", fiber.Map{
		"course": course,
	})
}

func (cc *CourseController) applyCourseUpdate(c *fiber.Ctx, ctx mongo.SessionContext, courseID primitive.ObjectID, queue *mediaQueue, out *models.Course) error {
	courses := cc.DB.Collection("courses")

	var course models.Course
	if err := courses.FindOne(ctx, bson.M{"_id": courseID}).Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: course not found", utils.ErrNotFound)
		}
		return err
	}

	applyScalarUpdates(c, &course)

	// Thumbnail: a newly uploaded file replaces the old one, which is
	// queued for deletion.
	if uploaded := middleware.FirstFileURL(c, "thumbnail"); uploaded != "" {
		if course.Thumbnail != "" && course.Thumbnail != uploaded {
			queue.Add(course.Thumbnail, "image")
		}
		course.Thumbnail = uploaded
	} else if v := c.FormValue("thumbnail"); v != "" {
		course.Thumbnail = v
	}

	// Course-level PDFs follow the same replace-and-queue rule.
	docs := &course.CourseDocuments
	if uploaded := middleware.FirstFileURL(c, "courseSyllabusPdf"); uploaded != "" {
		if docs.SyllabusPdf != "" && docs.SyllabusPdf != uploaded {
			queue.Add(docs.SyllabusPdf, "raw")
		}
		docs.SyllabusPdf = uploaded
	}
	if uploaded := middleware.FirstFileURL(c, "courseNotesPdf"); uploaded != "" {
		if docs.NotesPdf != "" && docs.NotesPdf != uploaded {
			queue.Add(docs.NotesPdf, "raw")
		}
		docs.NotesPdf = uploaded
	}
	if uploaded := middleware.FirstFileURL(c, "coursePreviousPapersPdf"); uploaded != "" {
		if docs.PreviousPapersPdf != "" && docs.PreviousPapersPdf != uploaded {
			queue.Add(docs.PreviousPapersPdf, "raw")
		}
		docs.PreviousPapersPdf = uploaded
	}

	// Explicit removals of titled notes/papers by id.
	course.CourseNotes = removeTitledDocuments(course.CourseNotes,
		decodeArray[string](c.FormValue("removedCourseNoteIds")), queue)
	course.PreviousPapers = removeTitledDocuments(course.PreviousPapers,
		decodeArray[string](c.FormValue("removedPreviousPaperIds")), queue)

	// Newly uploaded titled notes/papers are appended.
	files := middleware.Files(c)
	course.CourseNotes = append(course.CourseNotes, titledDocuments(
		files["courseNotes"], decodeArray[TitledMeta](c.FormValue("courseNotesMeta")), "Note", len(course.CourseNotes))...)
	course.PreviousPapers = append(course.PreviousPapers, titledDocuments(
		files["previousPapers"], decodeArray[TitledMeta](c.FormValue("previousPapersMeta")), "Paper", len(course.PreviousPapers))...)

	if syllabus := decodeArray[models.SyllabusItem](c.FormValue("syllabus")); syllabus != nil {
		course.Syllabus = syllabus
	}

	if chaptersInput := decodeArray[ChapterInput](c.FormValue("chapters")); chaptersInput != nil {
		if err := cc.applyChapterUpdates(c, ctx, &course, chaptersInput, queue); err != nil {
			return err
		}
	}

	course.UpdatedAt = time.Now()
	if _, err := courses.ReplaceOne(ctx, bson.M{"_id": course.ID}, course); err != nil {
		return err
	}

	*out = course
	return nil
}

func (cc *CourseController) applyChapterUpdates(c *fiber.Ctx, ctx mongo.SessionContext, course *models.Course, chaptersInput []ChapterInput, queue *mediaQueue) error {
	files := middleware.Files(c)
	videoFiles := files["lessonVideos"]
	pdfFiles := files["lessonNotes"]
	videoIndex := 0
	pdfIndex := 0

	// Explicit index-keyed mapping of uploaded videos; sequential matching
	// remains the fallback.
	videoMap := map[string]string{}
	for idx, m := range decodeArray[VideoMapping](c.FormValue("lessonVideoMappings")) {
		if idx < len(videoFiles) {
			videoMap[fmt.Sprintf("%d-%d", m.ChapterIndex, m.LessonIndex)] = videoFiles[idx].URL
		}
	}

	chapters := cc.DB.Collection("chapters")
	lessons := cc.DB.Collection("lessons")

	chapterIDs := make([]primitive.ObjectID, 0, len(chaptersInput))
	var allLessonIDs []primitive.ObjectID
	now := time.Now()

	for chIdx, ch := range chaptersInput {
		var chapter models.Chapter

		if ch.ID != "" {
			chapterID, err := primitive.ObjectIDFromHex(ch.ID)
			if err != nil {
				return fmt.Errorf("%w: invalid chapter id", utils.ErrValidation)
			}
			res := chapters.FindOneAndUpdate(ctx,
				bson.M{"_id": chapterID},
				bson.M{"$set": bson.M{
					"title":       ch.Title,
					"description": ch.Description,
					"order":       ch.Order,
					"updatedAt":   now,
				}},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			)
			if err := res.Decode(&chapter); err != nil {
				if errors.Is(err, mongo.ErrNoDocuments) {
					return fmt.Errorf("%w: chapter not found", utils.ErrNotFound)
				}
				return err
			}
		} else {
			chapter = models.Chapter{
				ID:          primitive.NewObjectID(),
				Course:      course.ID,
				Title:       ch.Title,
				Description: ch.Description,
				Order:       ch.Order,
				Lessons:     []primitive.ObjectID{},
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if _, err := chapters.InsertOne(ctx, chapter); err != nil {
				return err
			}
		}

		lessonIDs := make([]primitive.ObjectID, 0, len(ch.Lessons))
		for lIdx, l := range ch.Lessons {
			mapKey := fmt.Sprintf("%d-%d", chIdx, lIdx)

			if l.ID != "" {
				lessonID, err := primitive.ObjectIDFromHex(l.ID)
				if err != nil {
					return fmt.Errorf("%w: invalid lesson id", utils.ErrValidation)
				}

				var existing models.Lesson
				if err := lessons.FindOne(ctx, bson.M{"_id": lessonID}).Decode(&existing); err != nil {
					if errors.Is(err, mongo.ErrNoDocuments) {
						return fmt.Errorf("%w: lesson not found", utils.ErrNotFound)
					}
					return err
				}

				// Prior references are preserved unless an explicit upload,
				// an index mapping, or an external link resolves a new one.
				newVideoURL := existing.VideoURL
				if l.VideoType == models.VideoTypeUpload && videoMap[mapKey] != "" {
					newVideoURL = videoMap[mapKey]
				} else if l.VideoType == models.VideoTypeUpload && videoIndex < len(videoFiles) {
					newVideoURL = videoFiles[videoIndex].URL
					videoIndex++
				} else if l.VideoType == models.VideoTypeYouTube && l.VideoURL != "" {
					newVideoURL = l.VideoURL
				}

				newNotesURL := existing.NotesURL
				if bool(l.HasNotes) && pdfIndex < len(pdfFiles) {
					newNotesURL = pdfFiles[pdfIndex].URL
					pdfIndex++
				} else if l.NotesURL != "" {
					newNotesURL = l.NotesURL
				}

				// Replaced references are queued, never deleted here.
				if existing.VideoURL != "" && newVideoURL != "" && existing.VideoURL != newVideoURL {
					queue.Add(existing.VideoURL, "video")
				}
				if existing.NotesURL != "" && newNotesURL != "" && existing.NotesURL != newNotesURL {
					queue.Add(existing.NotesURL, "raw")
				}

				_, err = lessons.UpdateByID(ctx, lessonID, bson.M{"$set": bson.M{
					"title":         l.Title,
					"description":   l.Description,
					"videoUrl":      newVideoURL,
					"videoType":     l.VideoType,
					"notesUrl":      newNotesURL,
					"duration":      l.Duration,
					"order":         l.Order,
					"isFreePreview": bool(l.IsFreePreview),
					"subtitles":     l.Subtitles,
					"chapter":       chapter.ID,
					"course":        course.ID,
					"updatedAt":     now,
				}})
				if err != nil {
					return err
				}
				lessonIDs = append(lessonIDs, lessonID)
			} else {
				videoURL := ""
				if l.VideoType == models.VideoTypeUpload && videoMap[mapKey] != "" {
					videoURL = videoMap[mapKey]
				} else if l.VideoType == models.VideoTypeUpload && videoIndex < len(videoFiles) {
					videoURL = videoFiles[videoIndex].URL
					videoIndex++
				} else if l.VideoType == models.VideoTypeYouTube && l.VideoURL != "" {
					videoURL = l.VideoURL
				}

				notesURL := ""
				if bool(l.HasNotes) && pdfIndex < len(pdfFiles) {
					notesURL = pdfFiles[pdfIndex].URL
					pdfIndex++
				} else if l.NotesURL != "" {
					notesURL = l.NotesURL
				}

				lesson := models.Lesson{
					ID:            primitive.NewObjectID(),
					Chapter:       chapter.ID,
					Course:        course.ID,
					Title:         l.Title,
					Description:   l.Description,
					VideoURL:      videoURL,
					VideoType:     l.VideoType,
					NotesURL:      notesURL,
					Duration:      l.Duration,
					Order:         l.Order,
					IsFreePreview: bool(l.IsFreePreview),
					Subtitles:     l.Subtitles,
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if _, err := lessons.InsertOne(ctx, lesson); err != nil {
					return err
				}
				lessonIDs = append(lessonIDs, lesson.ID)
			}
		}

		if len(lessonIDs) > 0 {
			_, err := cc.DB.Collection("chapters").UpdateByID(ctx, chapter.ID, bson.M{
				"$set": bson.M{"lessons": lessonIDs, "updatedAt": now},
			})
			if err != nil {
				return err
			}
		}

		chapterIDs = append(chapterIDs, chapter.ID)
		allLessonIDs = append(allLessonIDs, lessonIDs...)
	}

	// Both sides of the aggregate stay in sync: the chapter list and the
	// flattened lesson list are rebuilt from what was just written.
	course.Chapters = chapterIDs
	course.Lessons = allLessonIDs
	return nil
}

// DeleteCourse removes a course and every lesson referencing it. Only the
// owning trainer or an admin may delete.
func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	ctx := c.Context()

	courseID, err := primitive.ObjectIDFromHex(c.Params("courseId"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Collection("courses").FindOne(ctx, bson.M{"_id": courseID}).Decode(&course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "Course not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	if middleware.UserRole(c) != models.RoleAdmin && course.Trainer.Hex() != middleware.UserID(c) {
		return utils.FailErr(c, utils.Wrap(utils.ErrForbidden, "Unauthorized to delete this course"))
	}

	if _, err := cc.DB.Collection("lessons").DeleteMany(ctx, bson.M{"course": courseID}); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to delete course")
	}
	if _, err := cc.DB.Collection("courses").DeleteOne(ctx, bson.M{"_id": courseID}); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to delete course")
	}

	return utils.Success(c, fiber.StatusOK, "Course deleted successfully", nil)
}

// GetTrainerCourses returns the caller's approved courses.
func (cc *CourseController) GetTrainerCourses(c *fiber.Ctx) error {
	ctx := c.Context()

	trainerID, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err != nil || middleware.UserRole(c) != models.RoleTrainer {
		return utils.Fail(c, fiber.StatusForbidden, "Only trainers can access their courses")
	}

	cursor, err := cc.DB.Collection("courses").Find(ctx, bson.M{
		"trainer": trainerID,
		"status":  models.StatusApproved,
	})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		result = append(result, fiber.Map{
			"course":     course,
			"lessonDocs": cc.lessonsOf(c, course.ID),
		})
	}

	return utils.Success(c, fiber.StatusOK, "", fiber.Map{"courses": result})
}

// EnrollCourse appends the course to the learner's enrollment list.
func (cc *CourseController) EnrollCourse(c *fiber.Ctx) error {
	ctx := c.Context()

	courseID, err := primitive.ObjectIDFromHex(c.Params("courseId"))
	if err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Invalid course ID")
	}

	count, err := cc.DB.Collection("courses").CountDocuments(ctx, bson.M{"_id": courseID})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}
	if count == 0 {
		return utils.Fail(c, fiber.StatusNotFound, "Course not found")
	}

	userID, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var user models.User
	if err := cc.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	if user.Role != models.RoleLearner {
		return utils.Fail(c, fiber.StatusForbidden, "Only learners can enroll in courses")
	}

	for _, enrolled := range user.EnrolledCourses {
		if enrolled == courseID {
			return utils.FailErr(c, utils.Wrap(utils.ErrConflict, "Already enrolled in this course"))
		}
	}

	_, err = cc.DB.Collection("users").UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"enrolledCourses": courseID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	return utils.Success(c, fiber.StatusOK, "Enrolled in course successfully", fiber.Map{
		"enrolledCourses": append(user.EnrolledCourses, courseID),
	})
}

// GetEnrolledCourses returns the caller's enrolled courses as a reduced
// projection.
func (cc *CourseController) GetEnrolledCourses(c *fiber.Ctx) error {
	ctx := c.Context()

	userID, err := primitive.ObjectIDFromHex(middleware.UserID(c))
	if err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid token")
	}

	var user models.User
	if err := cc.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.Fail(c, fiber.StatusNotFound, "User not found")
		}
		return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
	}

	result := []fiber.Map{}
	if len(user.EnrolledCourses) > 0 {
		cursor, err := cc.DB.Collection("courses").Find(ctx,
			bson.M{"_id": bson.M{"$in": user.EnrolledCourses}},
			options.Find().SetProjection(bson.M{
				"title": 1, "description": 1, "category": 1, "trainer": 1,
			}),
		)
		if err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
		}

		var courses []models.Course
		if err := cursor.All(ctx, &courses); err != nil {
			return utils.Fail(c, fiber.StatusInternalServerError, err.Error())
		}
		for _, course := range courses {
			result = append(result, fiber.Map{
				"id":          course.ID,
				"title":       course.Title,
				"description": course.Description,
				"category":    course.Category,
				"trainer":     course.Trainer,
			})
		}
	}

	return utils.Success(c, fiber.StatusOK, "Enrolled courses fetched successfully", fiber.Map{
		"enrolledCourses": result,
	})
}

// withTrainers attaches a minimal trainer view to each course.
func (cc *CourseController) withTrainers(c *fiber.Ctx, courses []models.Course) []fiber.Map {
	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		result = append(result, fiber.Map{
			"course":  course,
			"trainer": cc.trainerSummary(c, course.Trainer),
		})
	}
	return result
}

func (cc *CourseController) trainerSummary(c *fiber.Ctx, trainerID primitive.ObjectID) fiber.Map {
	var trainer models.User
	if err := cc.DB.Collection("users").FindOne(c.Context(), bson.M{"_id": trainerID}).Decode(&trainer); err != nil {
		return nil
	}
	return fiber.Map{"id": trainer.ID, "name": trainer.FullName, "email": trainer.Email}
}

func (cc *CourseController) lessonsOf(c *fiber.Ctx, courseID primitive.ObjectID) []models.Lesson {
	cursor, err := cc.DB.Collection("lessons").Find(c.Context(),
		bson.M{"course": courseID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil
	}
	var lessons []models.Lesson
	if err := cursor.All(c.Context(), &lessons); err != nil {
		return nil
	}
	return lessons
}

// applyScalarUpdates overwrites course fields only when a new value is
// supplied in the form.
func applyScalarUpdates(c *fiber.Ctx, course *models.Course) {
	set := func(dst *string, field string) {
		if v := c.FormValue(field); v != "" {
			*dst = v
		}
	}
	set(&course.Title, "title")
	set(&course.Description, "description")
	set(&course.Category, "category")
	set(&course.Duration, "duration")
	set(&course.CourseLevel, "courseLevel")
	set(&course.Language, "language")
	set(&course.Board, "board")
	set(&course.ClassLevel, "classLevel")
	set(&course.Subject, "subject")
	set(&course.TargetAudience, "targetAudience")

	if v := c.FormValue("price"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			course.Price = price
		}
	}
	if v := c.FormValue("certificationAvailable"); v != "" {
		course.CertificationAvailable = v == "true"
	}
	if v := c.FormValue("prerequisites"); v != "" {
		course.Prerequisites = stringList(v)
	}
}

// stringList accepts either a JSON array or a single bare value.
func stringList(raw string) []string {
	if raw == "" {
		return nil
	}
	if list := decodeArray[string](raw); list != nil {
		return list
	}
	return []string{raw}
}

// titledDocuments pairs uploaded files with their meta titles, falling back
// to "<kind> N" numbered from offset.
func titledDocuments(files []storage.UploadedFile, meta []TitledMeta, kind string, offset int) []models.TitledDocument {
	docs := make([]models.TitledDocument, 0, len(files))
	for idx, f := range files {
		title := ""
		if idx < len(meta) {
			title = meta[idx].Title
		}
		if title == "" {
			title = fmt.Sprintf("%s %d", kind, offset+idx+1)
		}
		docs = append(docs, models.TitledDocument{
			ID:    primitive.NewObjectID(),
			Title: title,
			URL:   f.URL,
		})
	}
	return docs
}

// removeTitledDocuments filters out entries whose id is listed, queueing
// their URLs for post-commit deletion.
func removeTitledDocuments(docs []models.TitledDocument, removedIDs []string, queue *mediaQueue) []models.TitledDocument {
	if len(removedIDs) == 0 {
		return docs
	}
	removed := map[string]bool{}
	for _, id := range removedIDs {
		removed[id] = true
	}
	kept := docs[:0]
	for _, doc := range docs {
		if removed[doc.ID.Hex()] {
			queue.Add(doc.URL, "raw")
			continue
		}
		kept = append(kept, doc)
	}
	return kept
}
