package sessionstore

import (
	"context"
	"errors"

	"github.com/vbonduro/imgprompt/internal/service"
)

var ErrNotFound = errors.New("session not found")

// SessionStore maps opaque session IDs to their controllers.
type SessionStore interface {
	Create(ctx context.Context) (id string, c *service.Controller, err error)
	Get(ctx context.Context, id string) (*service.Controller, error)
	Delete(ctx context.Context, id string) error
}
