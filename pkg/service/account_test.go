package service

import (
	"context"
	"testing"
	"time"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newAccountService(db *gorm.DB) *AccountService {
	return NewAccountService(db, newMemSessions(), nil, nil, time.Hour, zap.NewNop())
}

func validSignup() SignupInput {
	return SignupInput{
		Username:     "shopper",
		Password:     "hunter22",
		Email:        "shopper@example.com",
		FirstName:    "Sam",
		LastName:     "Shopper",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		Country:      "US",
		ZipCode:      "12345",
		BirthDate:    "1990-04-01",
	}
}

func TestSignupCreatesProfileWithAddress(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)

	ctx := context.Background()
	user, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.NotEqual(t, "hunter22", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))

	profile, err := svc.ProfileFor(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.BirthDate)
	require.Equal(t, "1990-04-01", profile.BirthDate.Format("2006-01-02"))
	require.Len(t, profile.Addresses, 1)
	require.Equal(t, models.AddressHome, profile.Addresses[0].Kind)
	require.Equal(t, "1 Main St", profile.Addresses[0].Line1)
	require.Equal(t, "12345", profile.Addresses[0].ZipCode)
}

func TestSignupBirthDateOptional(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)

	in := validSignup()
	in.BirthDate = ""
	user, err := svc.Signup(context.Background(), in)
	require.NoError(t, err)

	profile, err := svc.ProfileFor(context.Background(), user.ID)
	require.NoError(t, err)
	require.Nil(t, profile.BirthDate)
	require.Len(t, profile.Addresses, 1)
}

func TestSignupMissingFields(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)

	in := validSignup()
	in.City = ""
	_, err := svc.Signup(context.Background(), in)
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "city")

	// A rejected signup leaves nothing behind
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestSignupBadBirthDate(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)

	in := validSignup()
	in.BirthDate = "04/01/1990"
	_, err := svc.Signup(context.Background(), in)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSignupDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)

	ctx := context.Background()
	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = svc.Signup(ctx, validSignup())
	require.ErrorIs(t, err, ErrConflict)
}

func TestDuplicateUsernameInsertTranslated(t *testing.T) {
	db := newTestDB(t)

	ctx := context.Background()
	first := &models.User{ID: uuid.NewString(), Username: "shopper", Email: "a@example.com", PasswordHash: "x"}
	require.NoError(t, repository.CreateUser(ctx, db, first))

	// The unique index, not a pre-check, reports the duplicate
	second := &models.User{ID: uuid.NewString(), Username: "shopper", Email: "b@example.com", PasswordHash: "x"}
	err := repository.CreateUser(ctx, db, second)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestRecentActivity(t *testing.T) {
	db := newTestDB(t)
	audit := &memAudit{}
	svc := NewAccountService(db, newMemSessions(), audit, nil, time.Hour, zap.NewNop())

	ctx := context.Background()
	user, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return audit.count() == 1 }, time.Second, 10*time.Millisecond)

	logs, err := svc.RecentActivity(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "signup", logs[0].Action)
}

func TestSignupRunsInjectedProfileHook(t *testing.T) {
	db := newTestDB(t)

	hookCalls := 0
	hook := func(ctx context.Context, tx *gorm.DB, user *models.User) (*models.Profile, error) {
		hookCalls++
		return DefaultProfileHook(ctx, tx, user)
	}
	svc := NewAccountService(db, newMemSessions(), nil, hook, time.Hour, zap.NewNop())

	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	require.Equal(t, 1, hookCalls)
}

func TestLoginAndSessionRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)

	ctx := context.Background()
	user, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	session, err := svc.Login(ctx, "shopper", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	userID, err := svc.UserFromToken(ctx, session.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	require.NoError(t, svc.Logout(ctx, session.Token))
	_, err = svc.UserFromToken(ctx, session.Token)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)

	ctx := context.Background()
	_, err := svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "shopper", "wrong")
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Login(ctx, "nobody", "hunter22")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUserFromTokenMissing(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)

	_, err := svc.UserFromToken(context.Background(), "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestProfileForUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAccountService(db)

	_, err := svc.ProfileFor(context.Background(), "no-such-user")
	require.ErrorIs(t, err, ErrNotFound)
}

// Sanity check that the redis repository satisfies the store interface the
// account service is wired with in main.
var _ SessionStore = (*repository.RedisRepository)(nil)
