// Package push delivers mobile notifications through APNs.
package push

import (
	"context"
	"errors"
	"fmt"

	"recycle-backend/internal/config"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Message is a push notification for one device
type Message struct {
	DeviceToken string
	Title       string
	Body        string
	Data        map[string]any
}

// Pusher sends push notifications
type Pusher interface {
	Push(ctx context.Context, msg Message) error
}

// APNSPusher sends notifications with token-based APNs authentication
type APNSPusher struct {
	topic string
	send  func(ctx context.Context, n *apns2.Notification) (*apns2.Response, error)
}

// NewAPNSPusher creates a pusher from the apns section of the configuration
func NewAPNSPusher(cfg config.APNSConfig) (*APNSPusher, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSPusher{
		topic: cfg.Topic,
		send: func(ctx context.Context, n *apns2.Notification) (*apns2.Response, error) {
			return client.PushWithContext(ctx, n)
		},
	}, nil
}

// Push sends one alert. A rejected notification is reported with the APNs reason.
func (p *APNSPusher) Push(ctx context.Context, msg Message) error {
	if msg.DeviceToken == "" {
		return errors.New("device token is empty")
	}

	pl := payload.NewPayload().AlertTitle(msg.Title).AlertBody(msg.Body).Sound("default")
	for k, v := range msg.Data {
		pl = pl.Custom(k, v)
	}

	res, err := p.send(ctx, &apns2.Notification{
		DeviceToken: msg.DeviceToken,
		Topic:       p.topic,
		Payload:     pl,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}

// Noop drops every notification; used when APNs is not configured
type Noop struct{}

// Push does nothing
func (Noop) Push(context.Context, Message) error { return nil }
