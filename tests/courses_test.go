package tests

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aqib6220/lms/backend/models"
)

func TestApproveCourse(t *testing.T) {
	course := seedCourse(trainerUser.ID, models.StatusPending)

	status, result := doJSON(t, "PATCH", "/api/courses/"+course.ID.Hex()+"/approval",
		map[string]string{"status": models.StatusApproved}, adminToken)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["success"])

	var updated models.Course
	db.Collection("courses").FindOne(context.Background(), bson.M{"_id": course.ID}).Decode(&updated)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, adminUser.ID, *updated.ApprovedBy)
	assert.NotNil(t, updated.ApprovalDate)
}

func TestRejectCourseRequiresReason(t *testing.T) {
	course := seedCourse(trainerUser.ID, models.StatusPending)

	status, result := doJSON(t, "PATCH", "/api/courses/"+course.ID.Hex()+"/approval",
		map[string]string{"status": models.StatusRejected}, adminToken)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Rejection reason is required", result["message"])

	status, _ = doJSON(t, "PATCH", "/api/courses/"+course.ID.Hex()+"/approval",
		map[string]string{"status": models.StatusRejected, "rejectionReason": "Incomplete syllabus"}, adminToken)
	assert.Equal(t, fiber.StatusOK, status)

	var updated models.Course
	db.Collection("courses").FindOne(context.Background(), bson.M{"_id": course.ID}).Decode(&updated)
	assert.Equal(t, models.StatusRejected, updated.Status)
	assert.Equal(t, "Incomplete syllabus", updated.RejectionReason)
}

func TestApprovalRejectsInvalidStatus(t *testing.T) {
	course := seedCourse(trainerUser.ID, models.StatusPending)

	status, _ := doJSON(t, "PATCH", "/api/courses/"+course.ID.Hex()+"/approval",
		map[string]string{"status": "published"}, adminToken)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestApprovalRequiresAdmin(t *testing.T) {
	course := seedCourse(trainerUser.ID, models.StatusPending)

	status, _ := doJSON(t, "PATCH", "/api/courses/"+course.ID.Hex()+"/approval",
		map[string]string{"status": models.StatusApproved}, trainerToken)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestGetCourseVisibility(t *testing.T) {
	pending := seedCourse(trainerUser.ID, models.StatusPending)

	// Anonymous callers only see approved courses.
	status, result := doJSON(t, "GET", "/api/courses/"+pending.ID.Hex(), nil, "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "This course is not available", result["message"])

	// The owning trainer and admins can see their pending work.
	status, _ = doJSON(t, "GET", "/api/courses/"+pending.ID.Hex(), nil, trainerToken)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, "GET", "/api/courses/"+pending.ID.Hex(), nil, adminToken)
	assert.Equal(t, fiber.StatusOK, status)

	approved := seedCourse(trainerUser.ID, models.StatusApproved)
	status, result = doJSON(t, "GET", "/api/courses/"+approved.ID.Hex(), nil, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["course"])
}

func TestGetCourseNotFound(t *testing.T) {
	status, _ := doJSON(t, "GET", "/api/courses/64b000000000000000000000", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, "GET", "/api/courses/not-an-id", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestListCoursesOnlyApproved(t *testing.T) {
	seedCourse(trainerUser.ID, models.StatusApproved)
	seedCourse(trainerUser.ID, models.StatusPending)

	status, result := doJSON(t, "GET", "/api/courses/", nil, "")
	assert.Equal(t, fiber.StatusOK, status)

	courses, ok := result["courses"].([]interface{})
	assert.True(t, ok)
	for _, raw := range courses {
		course := raw.(map[string]interface{})["course"].(map[string]interface{})
		assert.Equal(t, models.StatusApproved, course["status"])
	}
}

func TestPendingCoursesAdminOnly(t *testing.T) {
	status, _ := doJSON(t, "GET", "/api/courses/pending", nil, trainerToken)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, result := doJSON(t, "GET", "/api/courses/pending", nil, adminToken)
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotNil(t, result["courses"])
}

func TestEnrollCourse(t *testing.T) {
	course := seedCourse(trainerUser.ID, models.StatusApproved)
	learner := seedUser("enroll@example.com", "enroll", models.RoleLearner, false)
	token, _ := generateToken(learner)

	status, result := doJSON(t, "POST", "/api/courses/"+course.ID.Hex()+"/enroll", nil, token)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["success"])

	// Enrolling twice must not duplicate the entry.
	status, result = doJSON(t, "POST", "/api/courses/"+course.ID.Hex()+"/enroll", nil, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Already enrolled in this course", result["message"])

	var user models.User
	db.Collection("users").FindOne(context.Background(), bson.M{"_id": learner.ID}).Decode(&user)
	assert.Len(t, user.EnrolledCourses, 1)
	assert.Equal(t, course.ID, user.EnrolledCourses[0])
}

func TestEnrollRequiresLearner(t *testing.T) {
	course := seedCourse(trainerUser.ID, models.StatusApproved)

	status, _ := doJSON(t, "POST", "/api/courses/"+course.ID.Hex()+"/enroll", nil, trainerToken)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestGetEnrolledCourses(t *testing.T) {
	course := seedCourse(trainerUser.ID, models.StatusApproved)
	learner := seedUser("roster@example.com", "roster", models.RoleLearner, false)
	token, _ := generateToken(learner)

	status, _ := doJSON(t, "POST", "/api/courses/"+course.ID.Hex()+"/enroll", nil, token)
	assert.Equal(t, fiber.StatusOK, status)

	status, result := doJSON(t, "GET", "/api/courses/enrolled/my", nil, token)
	assert.Equal(t, fiber.StatusOK, status)

	enrolled, ok := result["enrolledCourses"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, enrolled, 1)

	first := enrolled[0].(map[string]interface{})
	assert.Equal(t, "Test Course", first["title"])
}

// TestUpdateCourseAbortLeavesStateIntact needs a replica set for the
// transactional update path; gated separately from the rest of the suite.
func TestUpdateCourseAbortLeavesStateIntact(t *testing.T) {
	if os.Getenv("MONGO_RS") == "" {
		t.Skip("MONGO_RS not set; transactions need a replica set")
	}

	course := seedCourse(trainerUser.ID, models.StatusApproved)
	chapter := seedChapter(course.ID, 0)
	lesson := seedLesson(course.ID, chapter.ID, 0)

	// One valid chapter and one that does not exist force an abort after the
	// first chapter was already written inside the transaction.
	chaptersJSON := fmt.Sprintf(
		`[{"_id":%q,"title":"Renamed","order":0,"lessons":[]},{"_id":%q,"title":"Ghost","order":1,"lessons":[]}]`,
		chapter.ID.Hex(), primitive.NewObjectID().Hex())

	status, result := doForm(t, "PUT", "/api/courses/"+course.ID.Hex(), url.Values{
		"title":    {"Should not persist"},
		"chapters": {chaptersJSON},
	}, trainerToken)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, result["success"])

	ctx := context.Background()
	var after models.Course
	db.Collection("courses").FindOne(ctx, bson.M{"_id": course.ID}).Decode(&after)
	assert.Equal(t, "Test Course", after.Title)

	var chapterAfter models.Chapter
	db.Collection("chapters").FindOne(ctx, bson.M{"_id": chapter.ID}).Decode(&chapterAfter)
	assert.Equal(t, "Chapter 1", chapterAfter.Title)

	var lessonAfter models.Lesson
	db.Collection("lessons").FindOne(ctx, bson.M{"_id": lesson.ID}).Decode(&lessonAfter)
	assert.Equal(t, lesson.VideoURL, lessonAfter.VideoURL)
}

func TestDeleteCourse(t *testing.T) {
	course := seedCourse(trainerUser.ID, models.StatusApproved)
	seedLesson(course.ID, course.ID, 0)
	seedLesson(course.ID, course.ID, 1)

	status, result := doJSON(t, "DELETE", "/api/courses/"+course.ID.Hex(), nil, trainerToken)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Course deleted successfully", result["message"])

	ctx := context.Background()
	count, _ := db.Collection("courses").CountDocuments(ctx, bson.M{"_id": course.ID})
	assert.EqualValues(t, 0, count)
	count, _ = db.Collection("lessons").CountDocuments(ctx, bson.M{"course": course.ID})
	assert.EqualValues(t, 0, count)

	status, _ = doJSON(t, "GET", "/api/courses/"+course.ID.Hex(), nil, trainerToken)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDeleteCourseOwnershipCheck(t *testing.T) {
	other := seedUser("othertrainer@example.com", "othertrainer", models.RoleTrainer, false)
	course := seedCourse(other.ID, models.StatusApproved)

	status, result := doJSON(t, "DELETE", "/api/courses/"+course.ID.Hex(), nil, trainerToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Unauthorized to delete this course", result["message"])

	// Admins may delete any trainer's course.
	status, _ = doJSON(t, "DELETE", "/api/courses/"+course.ID.Hex(), nil, adminToken)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestTrainerCourses(t *testing.T) {
	owner := seedUser("solo@example.com", "solo", models.RoleTrainer, false)
	token, _ := generateToken(owner)
	seedCourse(owner.ID, models.StatusPending)
	seedCourse(owner.ID, models.StatusApproved)

	// Only approved courses are listed back to the trainer.
	status, result := doJSON(t, "GET", "/api/courses/mine", nil, token)
	assert.Equal(t, fiber.StatusOK, status)

	courses, ok := result["courses"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, courses, 1)
}
