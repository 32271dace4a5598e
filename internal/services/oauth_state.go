package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	authrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/auth"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/apierr"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

// StateTTL is how long an issued login state stays redeemable.
const StateTTL = 10 * time.Minute

// AuthStart carries everything the client needs to begin the provider
// login hop.
type AuthStart struct {
	AuthURL string `json:"authUrl"`
	Scope   string `json:"scope"`
	State   string `json:"state"`
}

// OAuthStateService issues and redeems single-use login states.
type OAuthStateService interface {
	Start(ctx context.Context) (*AuthStart, error)
	Consume(ctx context.Context, state string, now time.Time) error
	PruneExpired(ctx context.Context, now time.Time) error
}

type oauthStateService struct {
	log    *logger.Logger
	states authrepos.OAuthStateRepo
	conf   *oauth2.Config
}

func NewOAuthStateService(log *logger.Logger, states authrepos.OAuthStateRepo, conf *oauth2.Config) OAuthStateService {
	return &oauthStateService{
		log:    log.With("service", "OAuthStateService"),
		states: states,
		conf:   conf,
	}
}

func (s *oauthStateService) Start(ctx context.Context) (*AuthStart, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	record := &types.OAuthState{State: state, IssuedAt: time.Now().UTC()}
	if err := s.states.Create(ctx, nil, record); err != nil {
		return nil, fmt.Errorf("persist state: %w", err)
	}

	return &AuthStart{
		AuthURL: s.conf.AuthCodeURL(state, oauth2.AccessTypeOffline),
		Scope:   strings.Join(s.conf.Scopes, " "),
		State:   state,
	}, nil
}

// Consume redeems a state exactly once. Unknown, already-used, and
// expired states all fail the same way so a caller cannot distinguish
// them.
func (s *oauthStateService) Consume(ctx context.Context, state string, now time.Time) error {
	if state == "" {
		return apierr.InvalidInput(fmt.Errorf("state is required"))
	}
	record, err := s.states.Take(ctx, nil, state)
	if err != nil {
		return fmt.Errorf("take state: %w", err)
	}
	if record == nil {
		return apierr.Unauthenticated(fmt.Errorf("unknown or already used state"))
	}
	if now.Sub(record.IssuedAt) > StateTTL {
		return apierr.Unauthenticated(fmt.Errorf("state expired"))
	}
	return nil
}

func (s *oauthStateService) PruneExpired(ctx context.Context, now time.Time) error {
	return s.states.DeleteOlderThan(ctx, nil, now.Add(-StateTTL))
}
