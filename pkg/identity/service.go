package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"p9e.in/loantracker/models"
)

// Service is the Gateway implementation over the identities table.
type Service struct {
	db     *gorm.DB
	issuer tokenIssuer
}

func NewService(db *gorm.DB, secret []byte) *Service {
	return &Service{
		db:     db,
		issuer: tokenIssuer{secret: secret, now: time.Now},
	}
}

func (s *Service) Create(ctx context.Context, id string, phone, password string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	row := models.Identity{
		ID:           uid,
		PhoneKey:     models.PhoneKey(phone),
		PasswordHash: string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicatePhone
		}
		return err
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Identity{}).Error
}

func (s *Service) SignIn(ctx context.Context, phone, password string) (string, TokenPair, error) {
	var row models.Identity
	err := s.db.WithContext(ctx).Where("phone_key = ?", models.PhoneKey(phone)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", TokenPair{}, ErrInvalidCredentials
		}
		return "", TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		return "", TokenPair{}, ErrInvalidCredentials
	}
	if banned(row, s.issuer.now()) {
		return "", TokenPair{}, ErrBanned
	}
	pair, err := s.issuer.issuePair(row.ID.String())
	if err != nil {
		return "", TokenPair{}, err
	}
	return row.ID.String(), pair, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, TokenPair, error) {
	id, err := s.issuer.parse(refreshToken, tokenUseRefresh)
	if err != nil {
		return "", TokenPair{}, err
	}
	// Re-check ban state: a deactivated account must not mint new tokens
	// from an old refresh token.
	row, err := s.load(ctx, id)
	if err != nil {
		return "", TokenPair{}, err
	}
	if banned(*row, s.issuer.now()) {
		return "", TokenPair{}, ErrBanned
	}
	pair, err := s.issuer.issuePair(id)
	if err != nil {
		return "", TokenPair{}, err
	}
	return id, pair, nil
}

func (s *Service) Verify(ctx context.Context, accessToken string) (string, error) {
	id, err := s.issuer.parse(accessToken, tokenUseAccess)
	if err != nil {
		return "", err
	}
	row, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if banned(*row, s.issuer.now()) {
		return "", ErrBanned
	}
	return id, nil
}

func (s *Service) Ban(ctx context.Context, id string, d time.Duration) error {
	until := s.issuer.now().Add(d)
	res := s.db.WithContext(ctx).Model(&models.Identity{}).
		Where("id = ?", id).
		Update("banned_until", until)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) SetPassword(ctx context.Context, id string, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Identity{}).
		Where("id = ?", id).
		Update("password_hash", string(hash))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Identity, error) {
	var row models.Identity
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

func banned(row models.Identity, now time.Time) bool {
	return row.BannedUntil != nil && row.BannedUntil.After(now)
}
