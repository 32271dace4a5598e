package delivery

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// MaxTTLSeconds caps delegated-access URL lifetime regardless of
// configuration.
const MaxTTLSeconds = 300

// Grant describes one delegated content access: which user may fetch which
// lesson's object, and for how long.
type Grant struct {
	UserID     string
	LessonID   string
	Provider   string
	Key        string
	FileID     string
	TTLSeconds int
}

// Params are the query/path values presented back for verification.
type Params struct {
	Provider string
	Key      string
	LessonID string
	UserID   string
	Exp      string
	Sig      string
}

func canonicalPayload(provider, key, lessonID, userID string, expiry int64) string {
	return strings.Join([]string{
		provider,
		key,
		lessonID,
		userID,
		strconv.FormatInt(expiry, 10),
	}, ":")
}

func signature(secret []byte, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign builds a tamper-evident URL granting access to lesson content until
// now+TTL. The TTL is clamped to MaxTTLSeconds.
func Sign(baseURL string, secret []byte, now time.Time, g Grant) string {
	ttl := g.TTLSeconds
	if ttl <= 0 || ttl > MaxTTLSeconds {
		ttl = MaxTTLSeconds
	}
	expiry := now.Unix() + int64(ttl)

	sig := signature(secret, canonicalPayload(g.Provider, g.Key, g.LessonID, g.UserID, expiry))

	q := url.Values{}
	q.Set("fileId", g.FileID)
	q.Set("lessonId", g.LessonID)
	q.Set("uid", g.UserID)
	q.Set("exp", strconv.FormatInt(expiry, 10))
	q.Set("sig", sig)

	return fmt.Sprintf("%s/content/%s/%s?%s",
		strings.TrimRight(baseURL, "/"),
		url.PathEscape(g.Provider),
		url.PathEscape(g.Key),
		q.Encode(),
	)
}

// Verify recomputes the HMAC over the canonical payload and compares it in
// constant time. Any malformed or elapsed expiry, and any mismatch on
// provider, key, lesson, user or expiry, yields false. It never panics.
func Verify(secret []byte, now time.Time, p Params) bool {
	expiry, err := strconv.ParseInt(strings.TrimSpace(p.Exp), 10, 64)
	if err != nil {
		return false
	}
	if now.Unix() > expiry {
		return false
	}

	want := signature(secret, canonicalPayload(p.Provider, p.Key, p.LessonID, p.UserID, expiry))
	return hmac.Equal([]byte(want), []byte(strings.TrimSpace(p.Sig)))
}
