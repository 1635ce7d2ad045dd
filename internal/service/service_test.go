package service

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HappyHacker143/taskflow/internal/testutil"
)

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	database := testutil.NewDB(t)
	svc := New(database, Options{
		Location:     time.UTC,
		SessionTTL:   time.Hour,
		PasswordCost: bcrypt.MinCost,
		Now:          func() time.Time { return fixedNow },
	})
	return svc, database
}

func ptr[T any](v T) *T {
	return &v
}

var ctx = context.Background()
