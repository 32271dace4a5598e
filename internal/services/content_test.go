package services

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/learnbridge-backend/internal/delivery"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/apierr"
)

func signedParams(t *testing.T, signed string) delivery.Params {
	t.Helper()
	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	segments := strings.Split(strings.TrimPrefix(u.Path, "/content/"), "/")
	if len(segments) < 2 {
		t.Fatalf("unexpected signed path %q", u.Path)
	}
	key, err := url.PathUnescape(strings.Join(segments[1:], "/"))
	if err != nil {
		t.Fatalf("unescape key: %v", err)
	}
	q := u.Query()
	return delivery.Params{
		Provider: segments[0],
		Key:      key,
		LessonID: q.Get("lessonId"),
		UserID:   q.Get("uid"),
		Exp:      q.Get("exp"),
		Sig:      q.Get("sig"),
	}
}

func TestAttachContent(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	owner := seedPrincipal(t, stack, "ac-owner@example.com", types.RoleInstructor)
	rival := seedPrincipal(t, stack, "ac-rival@example.com", types.RoleInstructor)

	mustCourse(t, stack, owner, "c1")
	mustModule(t, stack, owner, "m1", "c1", 1)
	mustLesson(t, stack, owner, "l1", "m1", 1)

	input := AttachContentInput{Provider: "memory", Key: "objects/l1", FileID: "f1", ContentType: "video/mp4", Size: 1024}
	record, err := stack.contentSvc.Attach(ctx, owner, "l1", input)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if record.Size != 1024 {
		t.Fatalf("Attach: got %+v", record)
	}

	// Re-attach overwrites.
	input.Size = 2048
	record, err = stack.contentSvc.Attach(ctx, owner, "l1", input)
	if err != nil {
		t.Fatalf("re-Attach: %v", err)
	}
	if record.Size != 2048 {
		t.Fatalf("re-Attach: got %+v", record)
	}

	if _, err := stack.contentSvc.Attach(ctx, rival, "l1", input); !apierr.HasCode(err, apierr.CodeAccessDenied) {
		t.Fatalf("rival attach: expected access_denied, got %v", err)
	}
	if _, err := stack.contentSvc.Attach(ctx, owner, "missing", input); !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("missing lesson: expected not_found, got %v", err)
	}
	if _, err := stack.contentSvc.Attach(ctx, owner, "l1", AttachContentInput{Provider: "memory", Key: "k", FileID: "f", ContentType: "video/mp4", Size: -1}); !apierr.HasCode(err, apierr.CodeInvalidInput) {
		t.Fatalf("negative size: expected invalid_input, got %v", err)
	}
}

func TestContentURLAndOpen(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	now := time.Now().UTC()
	owner := seedPrincipal(t, stack, "cu-owner@example.com", types.RoleInstructor)
	student := seedPrincipal(t, stack, "cu-student@example.com", types.RoleStudent)
	outsider := seedPrincipal(t, stack, "cu-outsider@example.com", types.RoleStudent)

	mustCourse(t, stack, owner, "c1")
	mustModule(t, stack, owner, "m1", "c1", 1)
	mustLesson(t, stack, owner, "l1", "m1", 1)
	mustLesson(t, stack, owner, "l2", "m1", 2)
	if _, err := stack.learning.CreateEnrollment(ctx, student, CreateEnrollmentInput{ID: "e1", CourseID: "c1", UserID: student.UserID.String()}); err != nil {
		t.Fatalf("CreateEnrollment: %v", err)
	}

	payload := []byte("lesson one video bytes")
	stack.memory.Put("objects/l1", "video/mp4", payload)
	if _, err := stack.contentSvc.Attach(ctx, owner, "l1", AttachContentInput{
		Provider: "memory", Key: "objects/l1", FileID: "f1", ContentType: "video/mp4", Size: int64(len(payload)),
	}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	signed, err := stack.contentSvc.ContentURL(ctx, student, "l1", now)
	if err != nil {
		t.Fatalf("ContentURL: %v", err)
	}
	if signed.ExpiresIn != testDeliveryConfig.TTLSeconds {
		t.Fatalf("ContentURL: expiresIn=%d, want %d", signed.ExpiresIn, testDeliveryConfig.TTLSeconds)
	}

	params := signedParams(t, signed.URL)
	valid, err := stack.contentSvc.Verify(student, params, now)
	if err != nil || !valid {
		t.Fatalf("Verify: err=%v valid=%v", err, valid)
	}

	reader, info, err := stack.contentSvc.Open(ctx, params, now)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != string(payload) || info.ContentType != "video/mp4" {
		t.Fatalf("Open: body=%q contentType=%q", body, info.ContentType)
	}

	// Tampered user id invalidates the grant.
	tampered := params
	tampered.UserID = outsider.UserID.String()
	if valid, err := stack.contentSvc.Verify(student, tampered, now); err != nil || valid {
		t.Fatalf("tampered Verify: err=%v valid=%v", err, valid)
	}
	if _, _, err := stack.contentSvc.Open(ctx, tampered, now); !apierr.HasCode(err, apierr.CodeAccessDenied) {
		t.Fatalf("tampered Open: expected access_denied, got %v", err)
	}

	// Expired grants stop working.
	late := now.Add(time.Duration(testDeliveryConfig.TTLSeconds+10) * time.Second)
	if valid, err := stack.contentSvc.Verify(student, params, late); err != nil || valid {
		t.Fatalf("expired Verify: err=%v valid=%v", err, valid)
	}

	// Access rules on issuance.
	if _, err := stack.contentSvc.ContentURL(ctx, outsider, "l1", now); !apierr.HasCode(err, apierr.CodeAccessDenied) {
		t.Fatalf("outsider ContentURL: expected access_denied, got %v", err)
	}
	if _, err := stack.contentSvc.ContentURL(ctx, owner, "l1", now); err != nil {
		t.Fatalf("owner ContentURL: %v", err)
	}
	if _, err := stack.contentSvc.ContentURL(ctx, student, "l2", now); !apierr.HasCode(err, apierr.CodeNotFound) {
		t.Fatalf("no content attached: expected not_found, got %v", err)
	}
}
