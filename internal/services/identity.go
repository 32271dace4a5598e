package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/yungbote/learnbridge-backend/internal/platform/apierr"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

const googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Profile is what the identity provider knows about a user after a
// successful code exchange.
type Profile struct {
	Email       string
	DisplayName string
}

// IdentityExchanger turns an authorization code into a verified profile.
// Implementations call the provider; failures are never retried here.
type IdentityExchanger interface {
	Exchange(ctx context.Context, code string) (*Profile, error)
}

type googleExchanger struct {
	log  *logger.Logger
	conf *oauth2.Config
}

func NewGoogleExchanger(log *logger.Logger, conf *oauth2.Config) IdentityExchanger {
	return &googleExchanger{
		log:  log.With("service", "GoogleExchanger"),
		conf: conf,
	}
}

func (ge *googleExchanger) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := ge.conf.Exchange(ctx, code)
	if err != nil {
		ge.log.Warn("code exchange failed", "error", err)
		return nil, apierr.ProviderError(fmt.Errorf("identity exchange: %w", err))
	}

	client := ge.conf.Client(ctx, token)
	client.Timeout = 10 * time.Second

	resp, err := client.Get(googleUserinfoURL)
	if err != nil {
		return nil, apierr.ProviderError(fmt.Errorf("userinfo fetch: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apierr.ProviderError(fmt.Errorf("userinfo fetch: status %d", resp.StatusCode))
	}

	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apierr.ProviderError(fmt.Errorf("userinfo decode: %w", err))
	}
	if info.Email == "" {
		return nil, apierr.ProviderError(fmt.Errorf("userinfo response missing email"))
	}

	return &Profile{Email: info.Email, DisplayName: info.Name}, nil
}
