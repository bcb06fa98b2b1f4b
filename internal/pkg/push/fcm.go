package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/cmlabs-hris/hrm-backend-go/internal/config"
	"google.golang.org/api/option"
)

// fcmBatchLimit is the largest token list FCM accepts in one multicast.
const fcmBatchLimit = 500

type multicastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMSender delivers push messages through Firebase Cloud Messaging.
type FCMSender struct {
	client multicastClient
}

func NewFCMSender(ctx context.Context, cfg config.FirebaseConfig) (*FCMSender, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) SendMulticast(ctx context.Context, tokens []string, msg Message) (Result, error) {
	var result Result

	for start := 0; start < len(tokens); start += fcmBatchLimit {
		batch := tokens[start:min(start+fcmBatchLimit, len(tokens))]

		resp, err := s.client.SendEachForMulticast(ctx, toMulticast(batch, msg))
		if err != nil {
			return result, fmt.Errorf("fcm multicast failed: %w", err)
		}

		result.SuccessCount += resp.SuccessCount
		result.FailureCount += resp.FailureCount
		for i, r := range resp.Responses {
			if r.Error != nil && (messaging.IsUnregistered(r.Error) || messaging.IsInvalidArgument(r.Error)) {
				result.InvalidTokens = append(result.InvalidTokens, batch[i])
			}
		}
	}
	return result, nil
}

func toMulticast(tokens []string, msg Message) *messaging.MulticastMessage {
	androidPriority := "normal"
	if msg.Priority == "high" || msg.Priority == "urgent" {
		androidPriority = "high"
	}
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data:    msg.Data,
		Android: &messaging.AndroidConfig{Priority: androidPriority},
	}
}
