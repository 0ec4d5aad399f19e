package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"bulletin_board/internal/logger"
	"bulletin_board/internal/model"
	"bulletin_board/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrMessageNotFound  = model.NewNotFoundError("message not found")
	ErrMessageForbidden = model.NewForbiddenError("not authorized to delete this message")
	ErrEmptyMessage     = model.NewValidationError("message content is required", model.FieldError{Field: "content", Message: "content must not be empty"})
	ErrMessageTooLong   = model.NewValidationError("message is too long", model.FieldError{Field: "content", Message: "content must be at most 500 characters"})
)

// Notifier receives board changes as they happen
type Notifier interface {
	MessageCreated(msg model.MessageWithUser)
	MessageDeleted(id int64)
}

// MessageService defines operations for the message board
type MessageService interface {
	List(ctx context.Context, limit, offset int) (*model.MessagePage, error)
	Create(ctx context.Context, userID uuid.UUID, content string) (*model.Message, error)
	Delete(ctx context.Context, messageID int64, requesterID uuid.UUID) error
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	log         *logger.Logger
}

// NewMessageService creates a new MessageService. notifier may be nil.
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, notifier Notifier, log *logger.Logger) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		log:         log,
	}
}

// List returns a page of messages newest first along with the total count
func (s *messageService) List(ctx context.Context, limit, offset int) (*model.MessagePage, error) {
	if limit <= 0 {
		limit = model.DefaultMessageLimit
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.messageRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	total, err := s.messageRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	return &model.MessagePage{Messages: messages, TotalCount: total}, nil
}

// Create posts a message on behalf of userID and bumps their post count
func (s *messageService) Create(ctx context.Context, userID uuid.UUID, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > model.MaxMessageLength {
		return nil, ErrMessageTooLong
	}

	msg := &model.Message{Content: content, UserID: userID}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message in repo: %w", err)
	}

	if s.notifier != nil {
		s.publishCreated(ctx, msg)
	}
	return msg, nil
}

func (s *messageService) publishCreated(ctx context.Context, msg *model.Message) {
	author, err := s.userRepo.FindByID(ctx, msg.UserID)
	if err != nil || author == nil {
		s.log.Warn("skipping live event for message", "message_id", msg.ID, "error", err)
		return
	}
	s.notifier.MessageCreated(model.MessageWithUser{Message: *msg, User: author.Public()})
}

// Delete removes a message. Only its owner or an admin may do so, and only an
// owner's delete lowers the post count.
func (s *messageService) Delete(ctx context.Context, messageID int64, requesterID uuid.UUID) error {
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to find message: %w", err)
	}
	if msg == nil {
		return ErrMessageNotFound
	}

	isOwner := msg.UserID == requesterID
	if !isOwner {
		requester, err := s.userRepo.FindByID(ctx, requesterID)
		if err != nil {
			return fmt.Errorf("failed to find requester: %w", err)
		}
		if requester == nil || !requester.IsAdmin() {
			return ErrMessageForbidden
		}
	}

	deleted, err := s.messageRepo.Delete(ctx, messageID, isOwner)
	if err != nil {
		return fmt.Errorf("failed to delete message in repo: %w", err)
	}
	if !deleted {
		return ErrMessageNotFound
	}

	if s.notifier != nil {
		s.notifier.MessageDeleted(messageID)
	}
	return nil
}
