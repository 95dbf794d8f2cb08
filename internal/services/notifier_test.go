package services

import (
	"context"
	"errors"
	"testing"

	"recycle-backend/internal/models"
	"recycle-backend/internal/push"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pusherStub struct {
	sent []push.Message
	err  error
}

func (p *pusherStub) Push(_ context.Context, msg push.Message) error {
	p.sent = append(p.sent, msg)
	return p.err
}

func TestPushNotifier(t *testing.T) {
	users := newMemUsers()
	token := "device-1"
	opted := users.add(&models.User{Email: "a@b.c", PushToken: &token, Options: models.DefaultUserOptions()})
	silent := users.add(&models.User{Email: "b@b.c", PushToken: &token, Options: models.UserOptions{}})
	noDevice := users.add(&models.User{Email: "c@b.c", Options: models.DefaultUserOptions()})

	pusher := &pusherStub{}
	n := NewPushNotifier(users, pusher)
	ctx := context.Background()

	n.BalanceChanged(ctx, opted.ID, 42)
	n.BalanceChanged(ctx, silent.ID, 42)
	n.BalanceChanged(ctx, noDevice.ID, 42)
	n.BalanceChanged(ctx, 999, 42)

	require.Len(t, pusher.sent, 1)
	assert.Equal(t, "device-1", pusher.sent[0].DeviceToken)
	assert.Equal(t, int64(42), pusher.sent[0].Data["balance"])
}

func TestPushNotifierSwallowsErrors(t *testing.T) {
	users := newMemUsers()
	token := "device-1"
	u := users.add(&models.User{Email: "a@b.c", PushToken: &token, Options: models.DefaultUserOptions()})

	pusher := &pusherStub{err: errors.New("BadDeviceToken")}
	assert.NotPanics(t, func() {
		NewPushNotifier(users, pusher).BalanceChanged(context.Background(), u.ID, 1)
	})
	assert.Len(t, pusher.sent, 1)
}

func TestMultiNotifier(t *testing.T) {
	a, b := &notifierStub{}, &notifierStub{}
	MultiNotifier{a, b}.BalanceChanged(context.Background(), 1, 5)
	assert.Equal(t, []int64{5}, a.calls)
	assert.Equal(t, []int64{5}, b.calls)
}
