package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"olga_backend/internals/features/analytics/model"
)

// ErrDuplicateClientUID signals a concurrent registration for the same
// client; callers fall back to the already-stored token.
var ErrDuplicateClientUID = errors.New("client uid already registered")

// RegistryService issues and authorizes installation access tokens.
type RegistryService struct {
	DB *gorm.DB
}

func NewRegistryService(db *gorm.DB) *RegistryService {
	return &RegistryService{DB: db}
}

// ClientUIDFromIP derives the stable client identifier used when the
// installation does not send an explicit one.
func ClientUIDFromIP(ip string) string {
	sum := md5.Sum([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// GetAccessToken looks the client up and returns its stored token, or a
// freshly generated one with isNew=true. The new token is deliberately not
// persisted here; CreateInstallation does that, so concurrent duplicate
// registrations collapse on the client_uid unique constraint instead.
func (s *RegistryService) GetAccessToken(ctx context.Context, clientUID string) (string, bool, error) {
	var installation model.InstallationModel
	err := s.DB.WithContext(ctx).Where("client_uid = ?", clientUID).First(&installation).Error
	if err == nil {
		log.Printf("[REGISTRY] returning previous token %s for uid %s", installation.AccessToken, clientUID)
		return installation.AccessToken, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, err
	}

	token := uuid.NewString()
	log.Printf("[REGISTRY] issued new token %s for uid %s, not yet stored", token, clientUID)
	return token, true, nil
}

// CreateInstallation persists a freshly registered installation.
func (s *RegistryService) CreateInstallation(ctx context.Context, accessToken, clientUID string) error {
	installation := model.InstallationModel{
		AccessToken: accessToken,
		ClientUID:   clientUID,
	}
	if err := s.DB.WithContext(ctx).Create(&installation).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateClientUID
		}
		return err
	}
	log.Printf("[REGISTRY] registered installation with token %s for uid %s", accessToken, clientUID)
	return nil
}

// Register runs the full idempotent registration: existing clients get
// their stored token back, new ones get a stored fresh token. A duplicate
// race on create resolves to the winner's token.
func (s *RegistryService) Register(ctx context.Context, clientUID string) (string, error) {
	token, isNew, err := s.GetAccessToken(ctx, clientUID)
	if err != nil {
		return "", err
	}
	if !isNew {
		return token, nil
	}

	err = s.CreateInstallation(ctx, token, clientUID)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, ErrDuplicateClientUID) {
		return "", err
	}

	// Concurrent registration won the race; use its token.
	token, _, err = s.GetAccessToken(ctx, clientUID)
	return token, err
}

// Authorize fetches the installation owning the token; ok is false for
// unknown tokens.
func (s *RegistryService) Authorize(ctx context.Context, accessToken string) (*model.InstallationModel, bool, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, false, nil
	}
	var installation model.InstallationModel
	err := s.DB.WithContext(ctx).Where("access_token = ?", accessToken).First(&installation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[REGISTRY] token %s was not authorized", accessToken)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &installation, true, nil
}

// isDuplicateKey: Postgres unique violation check (SQLSTATE 23505).
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
