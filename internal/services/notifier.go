package services

import (
	"context"
	"fmt"
	"time"

	"recycle-backend/internal/models"
	"recycle-backend/internal/push"

	"github.com/rs/zerolog/log"
)

const pushTimeout = 5 * time.Second

// BalanceNotifier is told about a user's balance after every committed ledger change
type BalanceNotifier interface {
	BalanceChanged(ctx context.Context, userID, balance int64)
}

// MultiNotifier fans a balance change out to several notifiers
type MultiNotifier []BalanceNotifier

// BalanceChanged notifies every member
func (m MultiNotifier) BalanceChanged(ctx context.Context, userID, balance int64) {
	for _, n := range m {
		n.BalanceChanged(ctx, userID, balance)
	}
}

type pushUserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// PushNotifier sends a push notification to users who registered a device
// and opted in to notifications
type PushNotifier struct {
	users  pushUserStore
	pusher push.Pusher
}

// NewPushNotifier creates a new push notifier
func NewPushNotifier(users pushUserStore, pusher push.Pusher) *PushNotifier {
	return &PushNotifier{users: users, pusher: pusher}
}

// BalanceChanged pushes the new balance; failures are logged only
func (n *PushNotifier) BalanceChanged(ctx context.Context, userID, balance int64) {
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to load user for push")
		return
	}
	if user.PushToken == nil || *user.PushToken == "" || !user.Options.ReceiveNotifications {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()

	err = n.pusher.Push(ctx, push.Message{
		DeviceToken: *user.PushToken,
		Title:       "Balance updated",
		Body:        fmt.Sprintf("Your balance is now %d points", balance),
		Data:        map[string]any{"balance": balance},
	})
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to push balance update")
	}
}
