package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"
)

type notificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) List(ctx context.Context, limit int) (*model.NotificationFeed, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = 50
	}

	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.repo.CountUnread(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	return &model.NotificationFeed{Notifications: items, UnreadCount: unread}, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context) error {
	return s.repo.MarkAllRead(ctx)
}

func (s *notificationService) MarkRead(ctx context.Context, id int64) error {
	ok, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrNotificationNotFound
	}
	return nil
}
