package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/resend/resend-go/v3"

	"khrental/internal/config"
	"khrental/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// RequestUpdate is the content of a maintenance request email.
type RequestUpdate struct {
	Title        string
	Name         string
	Message      string
	RequestID    string
	RequestTitle string
	Status       domain.RequestStatus
	Priority     domain.Priority
	Link         string
	Color        string
}

type Service interface {
	SendRequestUpdate(ctx context.Context, toEmail string, update RequestUpdate) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}
}

func (s *service) SendRequestUpdate(ctx context.Context, toEmail string, update RequestUpdate) error {
	if s.config.ResendAPIKey == "" {
		slog.Debug("email delivery disabled, skipping", "to", toEmail, "request_id", update.RequestID)
		return nil
	}

	if update.Link == "" {
		update.Link = fmt.Sprintf("https://%s/maintenance/%s", s.config.Domain, update.RequestID)
	}

	body, err := Render(update)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("KH Rental Maintenance <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body,
		Subject: fmt.Sprintf("%s - %s", update.Title, update.RequestTitle),
	}

	_, err = s.client.Emails.Send(params)
	return err
}

// Render executes the request update template.
func Render(update RequestUpdate) (string, error) {
	if update.Color == "" {
		update.Color = StatusColor(update.Status)
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "layout", update); err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return body.String(), nil
}

func StatusColor(status domain.RequestStatus) string {
	switch status {
	case domain.StatusCompleted:
		return "#10b981"
	case domain.StatusCancelled:
		return "#ef4444"
	case domain.StatusInProgress:
		return "#f59e0b"
	default:
		return "#2563eb"
	}
}
