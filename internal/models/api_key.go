package models

import "time"

const (
	// RoleService is the role carried by requests authenticated with an API key
	RoleService = "service"
	// APIKeyPrefix starts every generated key, which tells API keys apart
	// from JWTs in an Authorization header
	APIKeyPrefix = "hak_"
)

// APIKey represents the api_keys table.
// Used by systems that admit patients through the API without a staff login,
// such as another admission server configured with ADMIT_API_TOKEN.
type APIKey struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Prefix      string     `gorm:"size:16;not null;uniqueIndex" json:"prefix"`
	KeyHash     string     `gorm:"size:255;not null" json:"-"`
	Description string     `gorm:"size:255" json:"description,omitempty"`
	CreatedBy   *uint      `gorm:"index" json:"created_by"`
	ExpiresAt   *time.Time `json:"expires_at"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName specifies the table name for APIKey model
func (APIKey) TableName() string {
	return "api_keys"
}

// Usable reports whether the key is active and unexpired at now
func (k *APIKey) Usable(now time.Time) bool {
	return k.IsActive && (k.ExpiresAt == nil || now.Before(*k.ExpiresAt))
}

// APIKeyResponse is returned once, when the key is generated; it is the only
// time the plain-text key is available
type APIKeyResponse struct {
	APIKey
	Key string `json:"api_key"`
}
