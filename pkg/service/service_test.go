package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db
}

func seedItem(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Item {
	t.Helper()

	item := &models.Item{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func seedAccount(t *testing.T, db *gorm.DB) (*models.User, *models.Profile) {
	t.Helper()

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     "user-" + uuid.NewString()[:8],
		Email:        "user@example.com",
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.Create(user).Error)

	profile := &models.Profile{
		ID:     uuid.NewString(),
		UserID: user.ID,
	}
	require.NoError(t, db.Create(profile).Error)

	return user, profile
}

func requireDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(expected).Equal(actual),
		"expected %s, got %s", expected, actual)
}

// memSessions is an in-memory SessionStore for tests.
type memSessions struct {
	sessions map[string]*repository.Session
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: make(map[string]*repository.Session)}
}

func (m *memSessions) SaveSession(_ context.Context, session *repository.Session, _ time.Duration) error {
	m.sessions[session.Token] = session
	return nil
}

func (m *memSessions) SessionByToken(_ context.Context, token string) (*repository.Session, error) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	return session, nil
}

func (m *memSessions) DeleteSession(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

// memAudit is an in-memory AuditStore for tests. Audit writes happen on
// goroutines, so access is guarded.
type memAudit struct {
	mu   sync.Mutex
	err  error
	logs []*repository.AuditLog
}

func (a *memAudit) CreateAuditLog(_ context.Context, log *repository.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.logs = append(a.logs, log)
	return nil
}

func (a *memAudit) AuditLogsForUser(_ context.Context, userID string, limit int64) ([]*repository.AuditLog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	var logs []*repository.AuditLog
	for _, l := range a.logs {
		if l.UserID == userID && int64(len(logs)) < limit {
			logs = append(logs, l)
		}
	}
	return logs, nil
}

func (a *memAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.logs)
}
