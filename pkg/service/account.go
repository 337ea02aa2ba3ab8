package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionStore persists login sessions. Implemented by the redis
// repository; tests supply an in-memory fake.
type SessionStore interface {
	SaveSession(ctx context.Context, session *repository.Session, ttl time.Duration) error
	SessionByToken(ctx context.Context, token string) (*repository.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuditStore records the audit trail. Implemented by the mongo repository;
// a nil store disables auditing.
type AuditStore interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
	AuditLogsForUser(ctx context.Context, userID string, limit int64) ([]*repository.AuditLog, error)
}

// ProfileHook creates the profile for a freshly created account, inside the
// signup transaction. The original system did this through a post-create
// listener; an injected function keeps the sequence visible and testable.
type ProfileHook func(ctx context.Context, tx *gorm.DB, user *models.User) (*models.Profile, error)

// DefaultProfileHook creates an empty profile for the user.
func DefaultProfileHook(ctx context.Context, tx *gorm.DB, user *models.User) (*models.Profile, error) {
	profile := &models.Profile{
		ID:     uuid.NewString(),
		UserID: user.ID,
	}
	if err := repository.CreateProfile(ctx, tx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

type AccountService struct {
	db         *gorm.DB
	sessions   SessionStore
	audit      AuditStore
	hook       ProfileHook
	sessionTTL time.Duration
	logger     *zap.Logger
}

func NewAccountService(db *gorm.DB, sessions SessionStore, audit AuditStore, hook ProfileHook, sessionTTL time.Duration, logger *zap.Logger) *AccountService {
	if hook == nil {
		hook = DefaultProfileHook
	}
	return &AccountService{
		db:         db,
		sessions:   sessions,
		audit:      audit,
		hook:       hook,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

type SignupInput struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	City         string `json:"city"`
	Country      string `json:"country"`
	ZipCode      string `json:"zip_code"`
	BirthDate    string `json:"birth_date"` // YYYY-MM-DD, optional
}

func (in *SignupInput) validate() (*time.Time, error) {
	required := []struct {
		field, value string
	}{
		{"username", in.Username},
		{"password", in.Password},
		{"email", in.Email},
		{"address_line_1", in.AddressLine1},
		{"city", in.City},
		{"country", in.Country},
		{"zip_code", in.ZipCode},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, validationError(r.field, "is required")
		}
	}

	if in.BirthDate == "" {
		return nil, nil
	}
	birthDate, err := time.Parse("2006-01-02", in.BirthDate)
	if err != nil {
		return nil, validationError("birth_date", "must be formatted YYYY-MM-DD")
	}
	return &birthDate, nil
}

// Signup creates the account, its profile (through the hook) and the home
// address in one transaction, so no signup ever leaves a profile without
// its address.
func (s *AccountService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	birthDate, err := in.validate()
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The username unique index is the authority on duplicates; a
		// pre-check would race with concurrent signups anyway.
		if err := repository.CreateUser(ctx, tx, user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("username %q taken: %w", in.Username, ErrConflict)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		profile, err := s.hook(ctx, tx, user)
		if err != nil {
			return fmt.Errorf("profile hook failed: %w", err)
		}

		if birthDate != nil {
			profile.BirthDate = birthDate
			if err := repository.SaveProfile(ctx, tx, profile); err != nil {
				return fmt.Errorf("failed to save profile: %w", err)
			}
		}

		address := &models.Address{
			ProfileID: profile.ID,
			Kind:      models.AddressHome,
			Line1:     in.AddressLine1,
			Line2:     in.AddressLine2,
			City:      in.City,
			Country:   in.Country,
			ZipCode:   in.ZipCode,
		}
		if err := repository.CreateAddress(ctx, tx, address); err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account created",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username))

	if s.audit != nil {
		go func() {
			err := s.audit.CreateAuditLog(context.Background(), &repository.AuditLog{
				Action:   "signup",
				UserID:   user.ID,
				EntityID: user.ID,
				Data:     bson.M{"username": user.Username},
			})
			if err != nil {
				s.logger.Warn("Failed to write audit log",
					zap.String("action", "signup"), zap.Error(err))
			}
		}()
	}

	return user, nil
}

// Login checks credentials and opens a session. Bad username or password
// both fail with ErrUnauthenticated.
func (s *AccountService) Login(ctx context.Context, username, password string) (*repository.Session, error) {
	user, err := repository.FindUserByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("unknown username: %w", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("bad password: %w", ErrUnauthenticated)
	}

	session := &repository.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.SaveSession(ctx, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	return session, nil
}

func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// UserFromToken resolves a session token to a user id for the auth
// middleware. Any miss is ErrUnauthenticated.
func (s *AccountService) UserFromToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("missing session token: %w", ErrUnauthenticated)
	}
	session, err := s.sessions.SessionByToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", ErrUnauthenticated)
	}
	return session.UserID, nil
}

// ProfileFor returns the user's profile with addresses.
func (s *AccountService) ProfileFor(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := repository.ProfileForUser(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

// RecentActivity returns the user's latest audit-trail entries.
func (s *AccountService) RecentActivity(ctx context.Context, userID string, limit int64) ([]*repository.AuditLog, error) {
	if s.audit == nil {
		return nil, nil
	}
	logs, err := s.audit.AuditLogsForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}
	return logs, nil
}
