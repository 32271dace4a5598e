package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnbridge-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: "Test User",
		Role:        role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, id string, createdBy uuid.UUID) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:        id,
		Title:     "Course " + id,
		CreatedBy: createdBy,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, id, courseID string, position int) *types.CourseModule {
	tb.Helper()
	m := &types.CourseModule{
		ID:       id,
		CourseID: courseID,
		Title:    "Module " + id,
		Position: position,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, id, moduleID string, position int) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:       id,
		ModuleID: moduleID,
		Title:    "Lesson " + id,
		Position: position,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, id, courseID string, userID uuid.UUID) *types.Enrollment {
	tb.Helper()
	e := &types.Enrollment{
		ID:         id,
		CourseID:   courseID,
		UserID:     userID,
		EnrolledAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, enrollmentID, lessonID, status string) *types.LessonProgress {
	tb.Helper()
	p := &types.LessonProgress{
		ID:           types.ProgressID(enrollmentID, lessonID),
		EnrollmentID: enrollmentID,
		LessonID:     lessonID,
		Status:       status,
	}
	if status == types.ProgressCompleted {
		now := time.Now().UTC()
		p.CompletedAt = &now
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}

func SeedContent(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID, provider string, size int64) *types.LessonContent {
	tb.Helper()
	c := &types.LessonContent{
		LessonID:    lessonID,
		Provider:    provider,
		Key:         "objects/" + lessonID,
		FileID:      "file-" + lessonID,
		ContentType: "video/mp4",
		Size:        size,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed content: %v", err)
	}
	return c
}
