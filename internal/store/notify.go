package store

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/models"
)

// Notifier receives token refresh events. Delivery is fire-and-forget: a
// returned error is logged by the store and otherwise ignored.
type Notifier interface {
	TokenRefreshed(ctx context.Context, ev models.TokenRefreshedEvent) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev models.TokenRefreshedEvent) error

func (f NotifierFunc) TokenRefreshed(ctx context.Context, ev models.TokenRefreshedEvent) error {
	return f(ctx, ev)
}

type nopNotifier struct{}

func (nopNotifier) TokenRefreshed(context.Context, models.TokenRefreshedEvent) error { return nil }
