package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/techagentng/bookclub/db"
	errs "github.com/techagentng/bookclub/errors"
	"github.com/techagentng/bookclub/models"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=../mocks/message_repository_mock.go -package=mocks github.com/techagentng/bookclub/db MessageRepository

const notifyTimeout = 10 * time.Second

// Dispatcher pushes an event to every live connection of a user and reports how many took it.
type Dispatcher interface {
	Broadcast(userID uuid.UUID, event models.ServerEvent) int
}

type ProfileLookup interface {
	FindProfilesByIDs(ids []uuid.UUID) (map[uuid.UUID]models.UserProfile, error)
}

type MessageService interface {
	// SendMessage stores the message, then delivers it to the receiver and the
	// sender. Both the request endpoint and the socket event use it.
	SendMessage(ctx context.Context, senderID uuid.UUID, event models.SendMessageEvent) (*models.Message, error)
	GetMessagesForUser(ctx context.Context, requesterID, userID uuid.UUID) ([]models.Message, error)
	GetConversation(ctx context.Context, userID, otherUserID uuid.UUID) ([]models.Message, error)
	GetChats(ctx context.Context, userID uuid.UUID) ([]models.ChatSummary, error)
}

type messageService struct {
	repo       db.MessageRepository
	profiles   ProfileLookup
	dispatcher Dispatcher
	notifier   Notifier
	logger     *zap.SugaredLogger
}

// NewMessageService wires the store and delivery paths. notifier may be nil.
func NewMessageService(repo db.MessageRepository, profiles ProfileLookup, dispatcher Dispatcher, notifier Notifier, logger *zap.SugaredLogger) MessageService {
	return &messageService{
		repo:       repo,
		profiles:   profiles,
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *messageService) SendMessage(ctx context.Context, senderID uuid.UUID, event models.SendMessageEvent) (*models.Message, error) {
	if !event.Complete() {
		return nil, errs.ErrMissingFields
	}
	receiverID, err := uuid.Parse(strings.TrimSpace(event.ReceiverID))
	if err != nil {
		return nil, errs.Validation("Invalid receiverId")
	}

	message, err := s.repo.CreateMessage(ctx, senderID, receiverID, event.Text)
	if err != nil {
		s.logger.Errorw("create message", "senderId", senderID, "receiverId", receiverID, "error", err)
		return nil, errs.Storage("Message not sent", err)
	}

	s.deliver(message)
	return message, nil
}

func (s *messageService) deliver(message *models.Message) {
	event := models.ReceiveMessageEvent{Message: *message}
	delivered := s.dispatcher.Broadcast(message.ReceiverID, event)
	if message.SenderID == message.ReceiverID {
		return
	}
	s.dispatcher.Broadcast(message.SenderID, event)

	if delivered > 0 || s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyNewMessage(ctx, message); err != nil {
			s.logger.Warnw("push notification failed", "messageId", message.ID, "error", err)
		}
	}()
}

func (s *messageService) GetMessagesForUser(ctx context.Context, requesterID, userID uuid.UUID) ([]models.Message, error) {
	if requesterID != userID {
		return nil, errs.Forbidden("Not authorized to view these messages.")
	}
	messages, err := s.repo.ListMessagesForUser(ctx, userID)
	if err != nil {
		s.logger.Errorw("list messages", "userId", userID, "error", err)
		return nil, errs.Storage("Failed to fetch messages", err)
	}
	return messages, nil
}

func (s *messageService) GetConversation(ctx context.Context, userID, otherUserID uuid.UUID) ([]models.Message, error) {
	messages, err := s.repo.ListConversation(ctx, userID, otherUserID)
	if err != nil {
		s.logger.Errorw("load conversation", "userId", userID, "otherUserId", otherUserID, "error", err)
		return nil, errs.Storage("Failed to fetch conversation", err)
	}
	return messages, nil
}

func (s *messageService) GetChats(ctx context.Context, userID uuid.UUID) ([]models.ChatSummary, error) {
	messages, err := s.repo.ListMessagesForUser(ctx, userID)
	if err != nil {
		s.logger.Errorw("list messages for chats", "userId", userID, "error", err)
		return nil, errs.Storage("Failed to fetch chats", err)
	}
	summaries := AggregateChats(userID, messages)
	profiles, err := s.profiles.FindProfilesByIDs(counterparties(summaries))
	if err != nil {
		s.logger.Errorw("load chat profiles", "userId", userID, "error", err)
		return nil, errs.Storage("Failed to fetch chats", err)
	}
	return JoinProfiles(summaries, profiles), nil
}
