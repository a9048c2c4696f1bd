package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const pushPreviewLength = 100

// Notifier alerts a receiver who had no live socket when a message arrived.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, message *models.Message) error
}

// PushSender is satisfied by *messaging.Client.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type UserFinder interface {
	FindUserByID(id uuid.UUID) (*models.User, error)
}

type NotificationService struct {
	push   PushSender
	users  UserFinder
	logger *zap.SugaredLogger
}

// NewFirebaseMessaging builds a messaging client from a service account file.
func NewFirebaseMessaging(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, errors.Wrap(err, "init firebase app")
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "init firebase messaging")
	}
	return client, nil
}

func NewNotificationService(push PushSender, users UserFinder, logger *zap.SugaredLogger) *NotificationService {
	return &NotificationService{push: push, users: users, logger: logger}
}

func (s *NotificationService) NotifyNewMessage(ctx context.Context, message *models.Message) error {
	receiver, err := s.users.FindUserByID(message.ReceiverID)
	if err != nil {
		return errors.Wrap(err, "find receiver")
	}
	if receiver.DeviceToken == "" {
		return nil
	}

	title := "New message"
	if sender, err := s.users.FindUserByID(message.SenderID); err == nil {
		title = fmt.Sprintf("New message from %s", sender.DisplayUsername())
	}

	id, err := s.push.Send(ctx, &messaging.Message{
		Token: receiver.DeviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  preview(message.Text),
		},
		Data: map[string]string{
			"type":      models.EventReceiveMessage,
			"messageId": message.ID.String(),
			"senderId":  message.SenderID.String(),
		},
	})
	if err != nil {
		return errors.Wrap(err, "send push")
	}
	s.logger.Debugw("push sent", "messageId", message.ID, "pushId", id)
	return nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= pushPreviewLength {
		return text
	}
	return string(runes[:pushPreviewLength]) + "…"
}
