package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"furnit-storefront/internal/client"
	"furnit-storefront/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeDirectory struct {
	users map[string]*client.AuthUser
	err   error
}

func (d *fakeDirectory) FindUserByEmail(_ context.Context, email string) (*client.AuthUser, error) {
	if d.err != nil {
		return nil, d.err
	}
	for addr, u := range d.users {
		if addr == email {
			return u, nil
		}
	}
	return nil, client.ErrUserNotFound
}

type fakeTransport struct {
	mu   sync.Mutex
	err  error
	sent []*client.MailMessage
}

func (t *fakeTransport) Send(_ context.Context, msg *client.MailMessage) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, msg)
	return nil
}

func (t *fakeTransport) Verify(context.Context) error {
	return t.err
}

func (t *fakeTransport) Sent() []*client.MailMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*client.MailMessage(nil), t.sent...)
}

var errSMTPDown = errors.New("dial tcp: connection refused")

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.OutboxMessage{},
	))
	return db
}
