package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/auth"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/apierr"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// AuthConfig carries token issuance parameters. Secrets must be at
// least 32 bytes; Config validation enforces that before the service
// exists.
type AuthConfig struct {
	AccessSecret     []byte
	RefreshSecret    []byte
	Issuer           string
	Audience         string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	AdminEmails      []string
	InstructorEmails []string
}

// AccessClaims is the payload of a short-lived access token.
type AccessClaims struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	TokenVersion int    `json:"tokenVersion"`
	TokenType    string `json:"type"`
	jwt.RegisteredClaims
}

// RefreshClaims binds a refresh token to its stored session.
type RefreshClaims struct {
	SessionID    string `json:"sid"`
	TokenVersion int    `json:"tokenVersion"`
	TokenType    string `json:"type"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login or rotation hands back.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

// LoginResult pairs the freshly minted tokens with the user they belong
// to.
type LoginResult struct {
	User   *types.User
	Tokens *TokenPair
}

// AuthService owns identity login, access token verification, and the
// refresh session lifecycle.
type AuthService interface {
	Login(ctx context.Context, code, state string, now time.Time) (*LoginResult, error)
	VerifyAccess(ctx context.Context, tokenString string, now time.Time) (*ctxutil.RequestData, error)
	Rotate(ctx context.Context, refreshToken string, now time.Time) (*TokenPair, error)
	Revoke(ctx context.Context, refreshToken string, now time.Time) error
	GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

type authService struct {
	log       *logger.Logger
	db        *gorm.DB
	cfg       AuthConfig
	users     authrepos.UserRepo
	sessions  authrepos.RefreshSessionRepo
	states    OAuthStateService
	exchanger IdentityExchanger
}

func NewAuthService(
	log *logger.Logger,
	db *gorm.DB,
	cfg AuthConfig,
	users authrepos.UserRepo,
	sessions authrepos.RefreshSessionRepo,
	states OAuthStateService,
	exchanger IdentityExchanger,
) AuthService {
	return &authService{
		log:       log.With("service", "AuthService"),
		db:        db,
		cfg:       cfg,
		users:     users,
		sessions:  sessions,
		states:    states,
		exchanger: exchanger,
	}
}

func (as *authService) Login(ctx context.Context, code, state string, now time.Time) (*LoginResult, error) {
	if code == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("code is required"))
	}
	if err := as.states.Consume(ctx, state, now); err != nil {
		return nil, err
	}

	// The provider call happens outside any transaction or lock.
	profile, err := as.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := as.getOrCreateUser(ctx, profile)
	if err != nil {
		return nil, err
	}

	tokens, err := as.mintPair(ctx, nil, user, now)
	if err != nil {
		return nil, err
	}

	as.log.Info("login", "user_id", user.ID, "role", user.Role)
	return &LoginResult{User: user, Tokens: tokens}, nil
}

func (as *authService) getOrCreateUser(ctx context.Context, profile *Profile) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))

	existing, err := as.users.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	user := &types.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: profile.DisplayName,
		Role:        as.roleFor(email),
	}
	created, err := as.users.Create(ctx, nil, []*types.User{user})
	if err != nil {
		// A concurrent first login for the same email can win the unique
		// index race; fall back to the row that exists.
		again, lookupErr := as.users.GetByEmails(ctx, nil, []string{email})
		if lookupErr == nil && len(again) > 0 {
			return again[0], nil
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created[0], nil
}

// roleFor assigns a role at first login only. Later allow-list edits do
// not rewrite existing users.
func (as *authService) roleFor(email string) string {
	for _, admin := range as.cfg.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return types.RoleAdmin
		}
	}
	for _, instructor := range as.cfg.InstructorEmails {
		if strings.EqualFold(strings.TrimSpace(instructor), email) {
			return types.RoleInstructor
		}
	}
	return types.RoleStudent
}

func (as *authService) mintPair(ctx context.Context, tx *gorm.DB, user *types.User, now time.Time) (*TokenPair, error) {
	access, err := as.mintAccess(user, now)
	if err != nil {
		return nil, err
	}
	refresh, err := as.issueRefresh(ctx, tx, user, now)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(as.cfg.AccessTTL.Seconds()),
	}, nil
}

func (as *authService) mintAccess(user *types.User, now time.Time) (string, error) {
	claims := AccessClaims{
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		TokenType:    tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    as.cfg.Issuer,
			Audience:  jwt.ClaimStrings{as.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.cfg.AccessTTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.cfg.AccessSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// issueRefresh creates a session row and returns a signed refresh token
// bound to it. Only the SHA-256 of the token is stored.
func (as *authService) issueRefresh(ctx context.Context, tx *gorm.DB, user *types.User, now time.Time) (string, error) {
	sessionID := uuid.New()
	expiresAt := now.Add(as.cfg.RefreshTTL)

	claims := RefreshClaims{
		SessionID:    sessionID.String(),
		TokenVersion: user.TokenVersion,
		TokenType:    tokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    as.cfg.Issuer,
			Audience:  jwt.ClaimStrings{as.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.cfg.RefreshSecret)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}

	session := &types.RefreshSession{
		ID:        sessionID,
		UserID:    user.ID,
		TokenHash: hashToken(signed),
		ExpiresAt: expiresAt,
	}
	if _, err := as.sessions.Create(ctx, tx, []*types.RefreshSession{session}); err != nil {
		return "", fmt.Errorf("persist refresh session: %w", err)
	}
	return signed, nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func (as *authService) VerifyAccess(ctx context.Context, tokenString string, now time.Time) (*ctxutil.RequestData, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return as.cfg.AccessSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(as.cfg.Issuer),
		jwt.WithAudience(as.cfg.Audience),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !token.Valid {
		return nil, apierr.Unauthenticated(fmt.Errorf("invalid access token"))
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, apierr.Unauthenticated(fmt.Errorf("wrong token type"))
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.Unauthenticated(fmt.Errorf("invalid subject"))
	}
	user, err := as.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, apierr.Unauthenticated(fmt.Errorf("token version no longer current"))
	}

	return &ctxutil.RequestData{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	}, nil
}

func (as *authService) verifyRefresh(tokenString string, now time.Time) (*RefreshClaims, uuid.UUID, uuid.UUID, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return as.cfg.RefreshSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(as.cfg.Issuer),
		jwt.WithAudience(as.cfg.Audience),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !token.Valid {
		return nil, uuid.Nil, uuid.Nil, apierr.Unauthenticated(fmt.Errorf("invalid refresh token"))
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, uuid.Nil, uuid.Nil, apierr.Unauthenticated(fmt.Errorf("wrong token type"))
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, apierr.Unauthenticated(fmt.Errorf("invalid session id"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, uuid.Nil, uuid.Nil, apierr.Unauthenticated(fmt.Errorf("invalid subject"))
	}
	return claims, sessionID, userID, nil
}

// Rotate redeems a refresh token for a new pair. The session row is
// locked so only one of two concurrent rotations of the same token can
// win; the loser sees the already-revoked row and fails. A token
// replayed after rotation also revokes every other session the user
// has.
func (as *authService) Rotate(ctx context.Context, refreshToken string, now time.Time) (*TokenPair, error) {
	_, sessionID, userID, err := as.verifyRefresh(refreshToken, now)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	txErr := as.db.Transaction(func(tx *gorm.DB) error {
		session, err := as.sessions.GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if session == nil {
			return apierr.Unauthenticated(fmt.Errorf("session not found"))
		}
		if session.UserID != userID ||
			subtle.ConstantTimeCompare([]byte(session.TokenHash), []byte(hashToken(refreshToken))) != 1 {
			return apierr.Unauthenticated(fmt.Errorf("session mismatch"))
		}
		if session.RevokedAt != nil {
			// Replay of an already-rotated token: assume theft and cut
			// off the rest of the account's sessions too.
			as.log.Warn("refresh token replay detected", "user_id", session.UserID, "session_id", session.ID)
			if err := as.sessions.RevokeByUserID(ctx, tx, session.UserID, now); err != nil {
				return fmt.Errorf("revoke sessions after replay: %w", err)
			}
			return apierr.Unauthenticated(fmt.Errorf("session revoked"))
		}
		if !now.Before(session.ExpiresAt) {
			return apierr.Unauthenticated(fmt.Errorf("session expired"))
		}

		won, err := as.sessions.CompareAndRevoke(ctx, tx, session.ID, now)
		if err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
		if !won {
			return apierr.Unauthenticated(fmt.Errorf("session revoked"))
		}

		users, err := as.users.GetByIDs(ctx, tx, []uuid.UUID{session.UserID})
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		if len(users) == 0 {
			return apierr.Unauthenticated(fmt.Errorf("user no longer exists"))
		}

		pair, err = as.mintPair(ctx, tx, users[0], now)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}
	return pair, nil
}

// Revoke marks the token's session revoked. Calling it again for the
// same token is a no-op, not an error.
func (as *authService) Revoke(ctx context.Context, refreshToken string, now time.Time) error {
	_, sessionID, userID, err := as.verifyRefresh(refreshToken, now)
	if err != nil {
		return err
	}

	session, err := as.sessions.GetByID(ctx, nil, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return apierr.Unauthenticated(fmt.Errorf("session not found"))
	}
	if session.UserID != userID ||
		subtle.ConstantTimeCompare([]byte(session.TokenHash), []byte(hashToken(refreshToken))) != 1 {
		return apierr.Unauthenticated(fmt.Errorf("session mismatch"))
	}

	if _, err := as.sessions.CompareAndRevoke(ctx, nil, sessionID, now); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (as *authService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	users, err := as.users.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if len(users) == 0 {
		return nil, apierr.Unauthenticated(fmt.Errorf("user not found"))
	}
	return users[0], nil
}
