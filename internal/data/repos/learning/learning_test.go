package learning

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/learnbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
)

func TestCourseRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewCourseRepo(db, testutil.Logger(t))
	instructor := testutil.SeedUser(t, ctx, tx, "courses@example.com", types.RoleInstructor)
	other := testutil.SeedUser(t, ctx, tx, "other@example.com", types.RoleInstructor)

	testutil.SeedCourse(t, ctx, tx, "crs-a", instructor.ID)
	testutil.SeedCourse(t, ctx, tx, "crs-b", instructor.ID)
	testutil.SeedCourse(t, ctx, tx, "crs-c", other.ID)

	got, err := repo.GetByIDs(ctx, tx, []string{"crs-a", "crs-c"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetByIDs: expected 2, got %d", len(got))
	}

	count, err := repo.CountByCreator(ctx, tx, instructor.ID)
	if err != nil {
		t.Fatalf("CountByCreator: %v", err)
	}
	if count != 2 {
		t.Fatalf("CountByCreator: expected 2, got %d", count)
	}
}

func TestModuleAndLessonRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	modules := NewCourseModuleRepo(db, testutil.Logger(t))
	lessons := NewLessonRepo(db, testutil.Logger(t))

	instructor := testutil.SeedUser(t, ctx, tx, "structure@example.com", types.RoleInstructor)
	course := testutil.SeedCourse(t, ctx, tx, "crs-structure", instructor.ID)
	m2 := testutil.SeedModule(t, ctx, tx, "mod-2", course.ID, 2)
	m1 := testutil.SeedModule(t, ctx, tx, "mod-1", course.ID, 1)
	testutil.SeedLesson(t, ctx, tx, "les-1", m1.ID, 1)
	testutil.SeedLesson(t, ctx, tx, "les-2", m1.ID, 2)
	testutil.SeedLesson(t, ctx, tx, "les-3", m2.ID, 1)

	ordered, err := modules.GetByCourseID(ctx, tx, course.ID)
	if err != nil {
		t.Fatalf("GetByCourseID: %v", err)
	}
	if len(ordered) != 2 || ordered[0].ID != "mod-1" || ordered[1].ID != "mod-2" {
		t.Fatalf("GetByCourseID: expected position order, got %+v", ordered)
	}

	taken, err := modules.PositionTaken(ctx, tx, course.ID, 2)
	if err != nil || !taken {
		t.Fatalf("PositionTaken(2): err=%v taken=%v", err, taken)
	}
	free, err := modules.PositionTaken(ctx, tx, course.ID, 3)
	if err != nil || free {
		t.Fatalf("PositionTaken(3): err=%v taken=%v", err, free)
	}

	byCourse, err := lessons.GetByCourseID(ctx, tx, course.ID)
	if err != nil {
		t.Fatalf("lessons GetByCourseID: %v", err)
	}
	if len(byCourse) != 3 {
		t.Fatalf("lessons GetByCourseID: expected 3, got %d", len(byCourse))
	}

	lessonCount, err := lessons.CountByCourseID(ctx, tx, course.ID)
	if err != nil || lessonCount != 3 {
		t.Fatalf("CountByCourseID: err=%v count=%d", err, lessonCount)
	}

	lessonTaken, err := lessons.PositionTaken(ctx, tx, m1.ID, 2)
	if err != nil || !lessonTaken {
		t.Fatalf("lesson PositionTaken: err=%v taken=%v", err, lessonTaken)
	}
}

func TestEnrollmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewEnrollmentRepo(db, testutil.Logger(t))

	instructor := testutil.SeedUser(t, ctx, tx, "enr-instructor@example.com", types.RoleInstructor)
	student := testutil.SeedUser(t, ctx, tx, "enr-student@example.com", types.RoleStudent)
	course := testutil.SeedCourse(t, ctx, tx, "crs-enroll", instructor.ID)
	testutil.SeedEnrollment(t, ctx, tx, "enr-1", course.ID, student.ID)

	pair, err := repo.GetByCourseAndUser(ctx, tx, course.ID, student.ID)
	if err != nil {
		t.Fatalf("GetByCourseAndUser: %v", err)
	}
	if pair == nil || pair.ID != "enr-1" {
		t.Fatalf("GetByCourseAndUser: got %+v", pair)
	}

	none, err := repo.GetByCourseAndUser(ctx, tx, course.ID, instructor.ID)
	if err != nil || none != nil {
		t.Fatalf("GetByCourseAndUser miss: err=%v enrollment=%+v", err, none)
	}

	count, err := repo.CountByUser(ctx, tx, student.ID)
	if err != nil || count != 1 {
		t.Fatalf("CountByUser: err=%v count=%d", err, count)
	}

	byCourse, err := repo.GetByCourseID(ctx, tx, course.ID)
	if err != nil || len(byCourse) != 1 {
		t.Fatalf("GetByCourseID: err=%v len=%d", err, len(byCourse))
	}
}

func TestLessonProgressRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewLessonProgressRepo(db, testutil.Logger(t))

	instructor := testutil.SeedUser(t, ctx, tx, "prog-instructor@example.com", types.RoleInstructor)
	student := testutil.SeedUser(t, ctx, tx, "prog-student@example.com", types.RoleStudent)
	course := testutil.SeedCourse(t, ctx, tx, "crs-progress", instructor.ID)
	module := testutil.SeedModule(t, ctx, tx, "mod-progress", course.ID, 1)
	l1 := testutil.SeedLesson(t, ctx, tx, "les-p1", module.ID, 1)
	l2 := testutil.SeedLesson(t, ctx, tx, "les-p2", module.ID, 2)
	l3 := testutil.SeedLesson(t, ctx, tx, "les-p3", module.ID, 3)
	enrollment := testutil.SeedEnrollment(t, ctx, tx, "enr-progress", course.ID, student.ID)

	testutil.SeedProgress(t, ctx, tx, enrollment.ID, l1.ID, types.ProgressCompleted)
	testutil.SeedProgress(t, ctx, tx, enrollment.ID, l2.ID, types.ProgressInProgress)
	testutil.SeedProgress(t, ctx, tx, enrollment.ID, l3.ID, types.ProgressNotStarted)

	total, completed, err := repo.CountByEnrollment(ctx, tx, enrollment.ID)
	if err != nil {
		t.Fatalf("CountByEnrollment: %v", err)
	}
	if total != 3 || completed != 1 {
		t.Fatalf("CountByEnrollment: total=%d completed=%d", total, completed)
	}

	id := types.ProgressID(enrollment.ID, l2.ID)
	now := time.Now().UTC()
	if err := repo.SetStatus(ctx, tx, id, types.ProgressCompleted, &now); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	row, err := repo.GetByID(ctx, tx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if row.Status != types.ProgressCompleted || row.CompletedAt == nil {
		t.Fatalf("SetStatus: got status=%s completedAt=%v", row.Status, row.CompletedAt)
	}

	// Leaving completed clears the timestamp.
	if err := repo.SetStatus(ctx, tx, id, types.ProgressInProgress, nil); err != nil {
		t.Fatalf("SetStatus back: %v", err)
	}
	row, err = repo.GetByID(ctx, tx, id)
	if err != nil {
		t.Fatalf("GetByID after reset: %v", err)
	}
	if row.Status != types.ProgressInProgress || row.CompletedAt != nil {
		t.Fatalf("SetStatus back: got status=%s completedAt=%v", row.Status, row.CompletedAt)
	}

	rows, err := repo.GetByEnrollmentID(ctx, tx, enrollment.ID)
	if err != nil || len(rows) != 3 {
		t.Fatalf("GetByEnrollmentID: err=%v len=%d", err, len(rows))
	}
}

func TestLessonContentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewLessonContentRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, tx, "content-owner@example.com", types.RoleInstructor)
	stranger := testutil.SeedUser(t, ctx, tx, "content-stranger@example.com", types.RoleInstructor)
	course := testutil.SeedCourse(t, ctx, tx, "crs-content", owner.ID)
	module := testutil.SeedModule(t, ctx, tx, "mod-content", course.ID, 1)
	l1 := testutil.SeedLesson(t, ctx, tx, "les-c1", module.ID, 1)
	l2 := testutil.SeedLesson(t, ctx, tx, "les-c2", module.ID, 2)

	testutil.SeedContent(t, ctx, tx, l1.ID, "gcs", 1000)
	testutil.SeedContent(t, ctx, tx, l2.ID, "memory", 500)

	record, err := repo.GetByLessonID(ctx, tx, l1.ID)
	if err != nil {
		t.Fatalf("GetByLessonID: %v", err)
	}
	if record == nil || record.Size != 1000 {
		t.Fatalf("GetByLessonID: got %+v", record)
	}

	// Re-attach overwrites in place.
	if err := repo.Upsert(ctx, tx, &types.LessonContent{
		LessonID:    l1.ID,
		Provider:    "gcs",
		Key:         "objects/replaced",
		FileID:      "file-replaced",
		ContentType: "video/webm",
		Size:        2500,
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	record, err = repo.GetByLessonID(ctx, tx, l1.ID)
	if err != nil {
		t.Fatalf("GetByLessonID after upsert: %v", err)
	}
	if record.Size != 2500 || record.Key != "objects/replaced" {
		t.Fatalf("Upsert: got %+v", record)
	}

	sum, err := repo.SumSizeByOwner(ctx, tx, owner.ID)
	if err != nil {
		t.Fatalf("SumSizeByOwner: %v", err)
	}
	if sum != 3000 {
		t.Fatalf("SumSizeByOwner: expected 3000, got %d", sum)
	}
	empty, err := repo.SumSizeByOwner(ctx, tx, stranger.ID)
	if err != nil || empty != 0 {
		t.Fatalf("SumSizeByOwner stranger: err=%v sum=%d", err, empty)
	}

	usage, err := repo.UsageByProviderForCourse(ctx, tx, course.ID)
	if err != nil {
		t.Fatalf("UsageByProviderForCourse: %v", err)
	}
	byProvider := map[string]ProviderUsage{}
	for _, u := range usage {
		byProvider[u.Provider] = u
	}
	if got := byProvider["gcs"]; got.FileCount != 1 || got.TotalBytes != 2500 {
		t.Fatalf("UsageByProviderForCourse gcs: %+v", got)
	}
	if got := byProvider["memory"]; got.FileCount != 1 || got.TotalBytes != 500 {
		t.Fatalf("UsageByProviderForCourse memory: %+v", got)
	}
}
