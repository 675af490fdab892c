package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// PushSender delivers a notification to a device
type PushSender interface {
	Send(ctx context.Context, deviceToken, title, body string) error
}

// APNsNotifier sends pushes through Apple Push Notification service
type APNsNotifier struct {
	client *apns2.Client
	topic  string
}

// NewAPNsNotifier loads a .p12 certificate and builds a client
func NewAPNsNotifier(certPath, certPassword, topic string, production bool) (*APNsNotifier, error) {
	cert, err := certificate.FromP12File(certPath, certPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	return &APNsNotifier{client: client, topic: topic}, nil
}

// Send pushes an alert to one device
func (n *APNsNotifier) Send(ctx context.Context, deviceToken, title, body string) error {
	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(body).Sound("default"),
	}

	res, err := n.client.PushWithContext(ctx, notification)
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("push rejected: %d %s", res.StatusCode, res.Reason)
	}
	log.Debug().Str("apns_id", res.ApnsID).Msg("Push notification sent")
	return nil
}

// NoopPushSender drops every push. Used when APNs is not configured.
type NoopPushSender struct{}

// Send does nothing
func (NoopPushSender) Send(context.Context, string, string, string) error { return nil }
