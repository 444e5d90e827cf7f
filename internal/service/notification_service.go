package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/artisanhub/backend/internal/logger"
	"github.com/artisanhub/backend/internal/models"
)

// NotificationRepository describes the notification store.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationService persists lifecycle notifications for users. Delivery
// beyond the stored row (push, email) is out of scope; clients poll.
type NotificationService struct {
	repo NotificationRepository
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify records a lifecycle event for a user. Best-effort: failures are
// logged and swallowed so a notification can never fail the operation that
// produced it.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, ntype string, jobID *uuid.UUID, message string) {
	n := &models.Notification{
		UserID:  userID,
		Type:    ntype,
		JobID:   jobID,
		Message: message,
	}
	if err := s.repo.Create(ctx, n); err != nil && logger.Log != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("failed to store notification")
	}
}

// ListNotifications returns a user's notifications.
func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, userID, limit, offset, unreadOnly)
}

// MarkAsRead marks one notification as read, checking ownership.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification service: notification does not belong to user")
	}
	return s.repo.MarkAsRead(ctx, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
