// Package cache holds the session cache used to short-circuit persistent
// user lookups during request authentication. Entries are snapshots of the
// user row keyed by normalized email and bounded by a TTL; the cache is a
// performance layer, never a source of truth.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vlasenko/contacts_api/internal/models"
)

const DefaultTTL = 900 * time.Second

var ErrMiss = errors.New("cache: entry absent")

type SessionCache interface {
	Get(ctx context.Context, email string) (*models.User, error)
	Put(ctx context.Context, email string, user *models.User) error
	Invalidate(ctx context.Context, email string) error
}

func key(email string) string {
	return "user:" + strings.ToLower(email)
}
