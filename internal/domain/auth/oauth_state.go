package auth

import (
	"time"
)

// OAuthState is a single-use anti-CSRF token for the authorization flow.
// Consumed (deleted) by the callback regardless of the exchange outcome.
type OAuthState struct {
	State    string    `gorm:"primaryKey;column:state" json:"state"`
	IssuedAt time.Time `gorm:"not null;column:issued_at" json:"issued_at"`
}

func (OAuthState) TableName() string { return "oauth_state" }
