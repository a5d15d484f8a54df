package model

import "time"

// Session records one issued access token so it can be listed and revoked.
// TokenID is the token's jti claim.
type Session struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"userId" gorm:"not null;index"`
	TokenID    string    `json:"-" gorm:"size:64;uniqueIndex;not null"`
	LastUsedAt time.Time `json:"lastUsedAt"`
	ExpiresAt  time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt  time.Time `json:"createdAt"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Active reports whether the session has not yet expired at now.
func (s Session) Active(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
