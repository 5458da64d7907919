// Package facade is what the HTTP layer talks to. Each call forwards to the
// lifecycle engine, re-reads the request after a successful mutation and
// turns engine errors into messages a user can act on.
package facade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"khrental/internal/domain"
	"khrental/internal/pkg/i18n"
	"khrental/internal/service/classifier"
	"khrental/internal/service/commentlog"
	"khrental/internal/service/lifecycle"
	"khrental/internal/service/tracker"
)

// Detail is a request as the presentation layer shows it.
type Detail struct {
	Request  *domain.MaintenanceRequest `json:"request"`
	Gallery  []classifier.Group         `json:"gallery"`
	Progress tracker.Progress           `json:"progress"`
}

type ImageBatch struct {
	*Detail
	Added     []domain.RequestImage `json:"added"`
	Failed    []domain.FileFailure  `json:"failed"`
	Succeeded int                   `json:"succeeded"`
	FailedN   int                   `json:"failed_count"`
}

// Error is returned for every failed call. Current holds the request as it
// is now when it could still be read.
type Error struct {
	Op      string
	Kind    domain.ErrorKind
	Message string
	Current *Detail
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) UserMessage() string {
	return e.Message
}

func (e *Error) CurrentState() any {
	if e.Current == nil {
		return nil
	}
	return e.Current
}

type Service interface {
	GetRequest(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, actor domain.Actor, filter domain.MaintenanceRequestFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.MaintenanceRequest], error)
	Comments(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.Comment, error)

	Create(ctx context.Context, actor domain.Actor, input domain.CreateMaintenanceRequestInput, uploads []domain.Upload) (*Detail, error)
	Assign(ctx context.Context, actor domain.Actor, id, staffID uuid.UUID) (*Detail, error)
	StartWork(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Detail, error)
	Complete(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string, uploads []domain.Upload) (*Detail, error)
	Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*Detail, error)
	AddComment(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.CreateCommentInput) (*Detail, error)
	AddImage(ctx context.Context, actor domain.Actor, id uuid.UUID, upload domain.Upload, imageType domain.ImageType) (*Detail, error)
	AddImages(ctx context.Context, actor domain.Actor, id uuid.UUID, uploads []domain.Upload, imageType domain.ImageType) (*ImageBatch, error)

	SetClock(now func() time.Time)
}

type facade struct {
	engine lifecycle.Service
	locale string
	now    func() time.Time
}

func NewService(engine lifecycle.Service, defaultLocale string) Service {
	if defaultLocale == "" {
		defaultLocale = i18n.DefaultLocale
	}
	return &facade{
		engine: engine,
		locale: defaultLocale,
		now:    time.Now,
	}
}

func (f *facade) SetClock(now func() time.Time) {
	f.now = now
}

func (f *facade) GetRequest(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Detail, error) {
	req, err := f.engine.Get(ctx, actor, id)
	if err != nil {
		return nil, f.fail(ctx, actor, "get", id, err, false)
	}
	return f.render(ctx, req), nil
}

func (f *facade) List(ctx context.Context, actor domain.Actor, filter domain.MaintenanceRequestFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.MaintenanceRequest], error) {
	page, err := f.engine.List(ctx, actor, filter, params)
	if err != nil {
		return page, f.fail(ctx, actor, "list", uuid.Nil, err, false)
	}
	return page, nil
}

func (f *facade) Comments(ctx context.Context, actor domain.Actor, id uuid.UUID) ([]domain.Comment, error) {
	req, err := f.engine.Get(ctx, actor, id)
	if err != nil {
		return nil, f.fail(ctx, actor, "comments", id, err, false)
	}
	return commentlog.VisibleTo(req.Comments, actor.Role), nil
}

func (f *facade) Create(ctx context.Context, actor domain.Actor, input domain.CreateMaintenanceRequestInput, uploads []domain.Upload) (*Detail, error) {
	req, err := f.engine.Create(ctx, actor, input, uploads)
	if err != nil {
		return nil, f.fail(ctx, actor, "create", uuid.Nil, err, false)
	}
	return f.refresh(ctx, actor, "create", req), nil
}

func (f *facade) Assign(ctx context.Context, actor domain.Actor, id, staffID uuid.UUID) (*Detail, error) {
	return f.mutate(ctx, actor, "assign", id, func() (*domain.MaintenanceRequest, error) {
		return f.engine.Assign(ctx, actor, id, staffID)
	})
}

func (f *facade) StartWork(ctx context.Context, actor domain.Actor, id uuid.UUID) (*Detail, error) {
	return f.mutate(ctx, actor, "start", id, func() (*domain.MaintenanceRequest, error) {
		return f.engine.StartWork(ctx, actor, id)
	})
}

func (f *facade) Complete(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string, uploads []domain.Upload) (*Detail, error) {
	return f.mutate(ctx, actor, "complete", id, func() (*domain.MaintenanceRequest, error) {
		return f.engine.Complete(ctx, actor, id, notes, uploads)
	})
}

func (f *facade) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*Detail, error) {
	return f.mutate(ctx, actor, "cancel", id, func() (*domain.MaintenanceRequest, error) {
		return f.engine.Cancel(ctx, actor, id, reason)
	})
}

func (f *facade) AddComment(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.CreateCommentInput) (*Detail, error) {
	return f.mutate(ctx, actor, "add_comment", id, func() (*domain.MaintenanceRequest, error) {
		return f.engine.AddComment(ctx, actor, id, input)
	})
}

func (f *facade) AddImage(ctx context.Context, actor domain.Actor, id uuid.UUID, upload domain.Upload, imageType domain.ImageType) (*Detail, error) {
	return f.mutate(ctx, actor, "add_image", id, func() (*domain.MaintenanceRequest, error) {
		return f.engine.AddImage(ctx, actor, id, upload, imageType)
	})
}

func (f *facade) AddImages(ctx context.Context, actor domain.Actor, id uuid.UUID, uploads []domain.Upload, imageType domain.ImageType) (*ImageBatch, error) {
	result, err := f.engine.AddImages(ctx, actor, id, uploads, imageType)
	if result == nil {
		return nil, f.fail(ctx, actor, "add_images", id, err, true)
	}

	batch := &ImageBatch{
		Added:     result.Added,
		Failed:    result.Failed,
		Succeeded: result.Succeeded,
		FailedN:   result.FailedN,
	}
	if err != nil {
		fe := f.fail(ctx, actor, "add_images", id, err, true)
		batch.Detail = fe.Current
		return batch, fe
	}

	if result.FailedN > 0 {
		slog.WarnContext(ctx, "some maintenance images failed to upload",
			"request_id", id, "actor_id", actor.ID, "succeeded", result.Succeeded, "failed", result.FailedN)
	}
	batch.Detail = f.refresh(ctx, actor, "add_images", result.Request)
	return batch, nil
}

func (f *facade) mutate(ctx context.Context, actor domain.Actor, op string, id uuid.UUID, run func() (*domain.MaintenanceRequest, error)) (*Detail, error) {
	req, err := run()
	if err != nil {
		return nil, f.fail(ctx, actor, op, id, err, true)
	}
	return f.refresh(ctx, actor, op, req), nil
}

// refresh re-reads the request after a write. If the read fails the write
// still happened, so the engine's own result is shown instead.
func (f *facade) refresh(ctx context.Context, actor domain.Actor, op string, written *domain.MaintenanceRequest) *Detail {
	fresh, err := f.engine.Get(ctx, actor, written.ID)
	if err != nil {
		slog.WarnContext(ctx, "failed to reload maintenance request after update",
			"op", op, "request_id", written.ID, "actor_id", actor.ID, "error", err)
		fresh = written
	}
	return f.render(ctx, fresh)
}

func (f *facade) fail(ctx context.Context, actor domain.Actor, op string, id uuid.UUID, err error, reload bool) *Error {
	kind := domain.KindOf(err)

	level := slog.LevelWarn
	if kind == domain.KindStorage {
		level = slog.LevelError
	}
	slog.Log(ctx, level, "maintenance request operation failed",
		"op", op, "request_id", id, "actor_id", actor.ID, "kind", kind, "error", err)

	fe := &Error{
		Op:      op,
		Kind:    kind,
		Message: i18n.Translate(f.localeOf(ctx), string(kind)),
		Err:     err,
	}
	if reload && id != uuid.Nil && kind != domain.KindNotFound {
		if current, gerr := f.engine.Get(ctx, actor, id); gerr == nil {
			fe.Current = f.render(ctx, current)
		}
	}
	return fe
}

func (f *facade) render(ctx context.Context, req *domain.MaintenanceRequest) *Detail {
	locale := f.localeOf(ctx)
	now := f.now()
	return &Detail{
		Request:  req,
		Gallery:  classifier.OrganizeLocalized(req.Images, now, locale),
		Progress: tracker.TrackLocalized(req, now, locale),
	}
}

func (f *facade) localeOf(ctx context.Context) string {
	return i18n.LocaleFrom(ctx, f.locale)
}
