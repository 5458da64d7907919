package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"khrental/internal/domain"
	"khrental/internal/pkg/i18n"
	"khrental/internal/repository"
	"khrental/internal/service/email"
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	// Emit fans a lifecycle event out to everyone involved in the request
	// except the actor.
	Emit(ctx context.Context, event domain.Event) error
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	emailSvc  email.Service
	locale    string
}

func NewService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc email.Service, locale string) Service {
	if locale == "" {
		locale = i18n.DefaultLocale
	}
	return &service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		emailSvc:  emailSvc,
		locale:    locale,
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.notifRepo.MarkAsRead(ctx, userID, id)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

func (s *service) Emit(ctx context.Context, event domain.Event) error {
	if event.Request == nil {
		return fmt.Errorf("event %s carries no request", event.Type)
	}

	recipients, err := s.recipients(ctx, event)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients: %w", err)
	}

	req := event.Request
	title, message := s.render(event)
	data, _ := json.Marshal(map[string]string{
		"request_id": req.ID.String(),
		"status":     string(req.Status),
		"actor_id":   event.Actor.ID.String(),
	})

	var errs []error
	for _, userID := range recipients {
		notif := &domain.Notification{
			ID:      uuid.New(),
			UserID:  userID,
			Type:    event.Type,
			Title:   title,
			Message: message,
			Data:    json.RawMessage(data),
		}
		if err := s.notifRepo.Create(ctx, notif); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", userID, err))
			continue
		}

		if s.emailSvc == nil {
			continue
		}
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil || user.Email == "" {
			continue
		}
		update := email.RequestUpdate{
			Title:        title,
			Name:         user.FullName,
			Message:      message,
			RequestID:    req.ID.String(),
			RequestTitle: req.Title,
			Status:       req.Status,
			Priority:     req.Priority,
		}
		go func(toEmail string, update email.RequestUpdate) {
			ctx := context.Background()
			if err := s.emailSvc.SendRequestUpdate(ctx, toEmail, update); err != nil {
				slog.Warn("failed to send maintenance email", "request_id", update.RequestID, "error", err)
			}
		}(user.Email, update)
	}

	return errors.Join(errs...)
}

// recipients returns the rentee and the assignee, plus every admin for new
// requests. The actor never notifies themselves, and internal comments never
// reach the rentee.
func (s *service) recipients(ctx context.Context, event domain.Event) ([]uuid.UUID, error) {
	req := event.Request
	seen := map[uuid.UUID]bool{event.Actor.ID: true, uuid.Nil: true}
	var ids []uuid.UUID
	add := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	internal := event.Type == domain.EventCommentAdded && event.Comment != nil && event.Comment.IsInternal
	if !internal {
		add(req.RenteeID)
	}
	if req.AssignedTo != nil {
		add(*req.AssignedTo)
	}

	if event.Type == domain.EventRequestCreated {
		admins, err := s.userRepo.GetByRoles(ctx, []domain.Role{domain.RoleAdmin})
		if err != nil {
			return nil, err
		}
		for _, admin := range admins {
			add(admin.ID)
		}
	}

	return ids, nil
}

func (s *service) render(event domain.Event) (string, string) {
	key := "NOTIF_" + strings.ToUpper(strings.ReplaceAll(string(event.Type), ".", "_"))
	replacer := strings.NewReplacer(
		"{actor}", event.Actor.Name,
		"{title}", event.Request.Title,
		"{count}", strconv.Itoa(event.Images),
	)
	return i18n.Translate(s.locale, key+"_TITLE"), replacer.Replace(i18n.Translate(s.locale, key+"_MESSAGE"))
}
