// Package notify delivers push notifications to mobile clients.
package notify

import (
	"context"
	"fmt"

	"tripshare-backend/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

// Message is a push notification addressed to one device
type Message struct {
	DeviceToken string
	Title       string
	Body        string
	Data        map[string]string
}

// APNsNotifier sends pushes through Apple Push Notification service
type APNsNotifier struct {
	client *apns2.Client
	topic  string
}

// NewAPNsNotifier creates a token-authenticated APNs client
func NewAPNsNotifier(cfg config.APNsConfig) (*APNsNotifier, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs auth key: %w", err)
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

	return &APNsNotifier{client: client, topic: cfg.Topic}, nil
}

// Notify sends msg and reports rejection by APNs as an error
func (n *APNsNotifier) Notify(ctx context.Context, msg Message) error {
	p := payload.NewPayload().AlertTitle(msg.Title).AlertBody(msg.Body).Sound("default")
	for k, v := range msg.Data {
		p.Custom(k, v)
	}

	res, err := n.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: msg.DeviceToken,
		Topic:       n.topic,
		Payload:     p,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("apns rejected notification: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}

// LogNotifier records notifications in the log instead of sending them.
// It stands in when APNs is not configured.
type LogNotifier struct{}

// Notify logs msg
func (LogNotifier) Notify(_ context.Context, msg Message) error {
	log.Debug().
		Str("title", msg.Title).
		Str("body", msg.Body).
		Msg("Push notification skipped, APNs not configured")
	return nil
}
