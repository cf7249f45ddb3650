package service

//go:generate mockgen -source=stores.go -destination=mock_stores_test.go -package=service

import (
	"context"
	"time"

	"hospital-admission/internal/models"
	"hospital-admission/internal/repository"
)

// PatientStore is the persistence used by PatientService
type PatientStore interface {
	CreatePatient(ctx context.Context, patient *models.Patient) error
	GetPatientByID(ctx context.Context, id uint) (*models.Patient, error)
	GetPatientByMRN(ctx context.Context, mrn string) (*models.Patient, error)
	ListPatients(ctx context.Context, filter repository.PatientFilter) ([]models.Patient, error)
	CountActiveBySpecialty(ctx context.Context) (map[models.Specialty]int64, error)
	DischargePatient(ctx context.Context, id uint, at time.Time) error
}

// UserStore is the persistence used by AuthService
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
	PurgeRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

// APIKeyStore is the persistence used by APIKeyService
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	FindAPIKeyByPrefix(ctx context.Context, prefix string) (*models.APIKey, error)
	ListAPIKeys(ctx context.Context) ([]models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uint) (*models.APIKey, error)
}

// AuditStore records audit log entries
type AuditStore interface {
	CreateAuditLog(ctx context.Context, userID *uint, action string, details string) error
}

var (
	_ PatientStore = (*repository.PatientRepository)(nil)
	_ UserStore    = (*repository.UserRepository)(nil)
	_ APIKeyStore  = (*repository.APIKeyRepository)(nil)
	_ AuditStore   = (*repository.AuditRepository)(nil)
)

type actorKey struct{}

// WithActor attaches the authenticated staff member's ID to ctx for auditing
func WithActor(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// actorFrom returns the staff member ID set by WithActor, or nil
func actorFrom(ctx context.Context) *uint {
	if id, ok := ctx.Value(actorKey{}).(uint); ok {
		return &id
	}
	return nil
}
