package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"khrental/internal/domain"
	"khrental/internal/repository"
	"khrental/internal/service/commentlog"
	"khrental/internal/service/dashboard"
	"khrental/internal/service/media"
	"khrental/internal/service/notification"
)

const maxTitleLength = 200

// Service owns the maintenance request state machine. Every mutation runs
// authorize, state check, input check, then a single versioned write, and
// returns before the write on any failure.
type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateMaintenanceRequestInput, uploads []domain.Upload) (*domain.MaintenanceRequest, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.MaintenanceRequest, error)
	List(ctx context.Context, actor domain.Actor, filter domain.MaintenanceRequestFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.MaintenanceRequest], error)

	Assign(ctx context.Context, actor domain.Actor, id, staffID uuid.UUID) (*domain.MaintenanceRequest, error)
	StartWork(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.MaintenanceRequest, error)
	Complete(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string, uploads []domain.Upload) (*domain.MaintenanceRequest, error)
	Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.MaintenanceRequest, error)
	AddComment(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.CreateCommentInput) (*domain.MaintenanceRequest, error)
	AddImage(ctx context.Context, actor domain.Actor, id uuid.UUID, upload domain.Upload, imageType domain.ImageType) (*domain.MaintenanceRequest, error)
	AddImages(ctx context.Context, actor domain.Actor, id uuid.UUID, uploads []domain.Upload, imageType domain.ImageType) (*domain.ImageBatchResult, error)

	SetNotificationService(notifSvc notification.Service)
	SetClock(now func() time.Time)
}

type service struct {
	requestRepo repository.MaintenanceRequestRepository
	imageRepo   repository.RequestImageRepository
	userRepo    repository.UserRepository
	comments    commentlog.Service
	blob        media.Service
	redis       *redis.Client
	notifSvc    notification.Service
	now         func() time.Time
	concurrency int
}

func NewService(
	requestRepo repository.MaintenanceRequestRepository,
	imageRepo repository.RequestImageRepository,
	userRepo repository.UserRepository,
	comments commentlog.Service,
	blob media.Service,
	redis *redis.Client,
	uploadConcurrency int,
) Service {
	if uploadConcurrency < 1 {
		uploadConcurrency = 1
	}
	return &service{
		requestRepo: requestRepo,
		imageRepo:   imageRepo,
		userRepo:    userRepo,
		comments:    comments,
		blob:        blob,
		redis:       redis,
		now:         time.Now,
		concurrency: uploadConcurrency,
	}
}

func (s *service) SetNotificationService(notifSvc notification.Service) {
	s.notifSvc = notifSvc
}

func (s *service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateMaintenanceRequestInput, uploads []domain.Upload) (*domain.MaintenanceRequest, error) {
	renteeID, err := authorizeCreate(actor, input.RenteeID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		return nil, domain.ValidationError("title is required")
	case utf8.RuneCountInString(title) > maxTitleLength:
		return nil, domain.ValidationError("title exceeds %d characters", maxTitleLength)
	case input.PropertyID == uuid.Nil:
		return nil, domain.ValidationError("property_id is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, domain.ValidationError("unknown priority %q", priority)
	}

	now := s.now()
	req := &domain.MaintenanceRequest{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		RequestType: strings.TrimSpace(input.RequestType),
		Priority:    priority,
		Status:      domain.StatusPending,
		PropertyID:  input.PropertyID,
		RenteeID:    renteeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	objects, err := s.uploadAll(ctx, uploads, operationFolder(req.ID))
	if err != nil {
		return nil, err
	}
	images := s.toImages(req.ID, actor, domain.ImageInitial, uploads, objects)

	audit := domain.NewAuditLog(actor, "CREATE", req.ID, nil, snapshot(req), requestMeta(ctx))
	if err := s.requestRepo.Create(ctx, req, images, audit); err != nil {
		s.discard(ctx, objects)
		return nil, err
	}

	req.Images = images
	req.Comments = []domain.Comment{}

	s.invalidateStats(ctx)
	s.emit(domain.Event{Type: domain.EventRequestCreated, Actor: actor, Request: req, Images: len(images)})

	return req, nil
}

func (s *service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(actor, req); err != nil {
		return nil, err
	}
	return visibleCopy(req, actor), nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, filter domain.MaintenanceRequestFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.MaintenanceRequest], error) {
	switch {
	case actor.IsAdmin() || actor.Role.IsStaff():
	case actor.HasRole(domain.RoleRentee, domain.RoleRequester):
		filter.RenteeID = &actor.ID
	default:
		return domain.PaginatedResponse[domain.MaintenanceRequest]{}, domain.UnauthorizedError("role %q may not list requests", actor.Role)
	}

	params.Validate()
	requests, total, err := s.requestRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.MaintenanceRequest]{}, err
	}
	return domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total), nil
}

func (s *service) Assign(ctx context.Context, actor domain.Actor, id, staffID uuid.UUID) (*domain.MaintenanceRequest, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeAssign(actor, current, staffID); err != nil {
		return nil, err
	}
	next, err := Next(current.Status, EventAssign)
	if err != nil {
		return nil, err
	}
	if err := s.validateStaff(ctx, staffID); err != nil {
		return nil, err
	}
	if err := checkVersion(ctx, current); err != nil {
		return nil, err
	}

	now := s.now()
	updated := current.Clone()
	updated.Status = next
	updated.AssignedTo = &staffID
	updated.AssignedAt = &now
	updated.UpdatedAt = now

	if err := s.commit(ctx, actor, current, updated, change{action: "ASSIGN", event: domain.EventRequestAssigned}); err != nil {
		return nil, err
	}
	return visibleCopy(updated, actor), nil
}

func (s *service) StartWork(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, current, EventStart, false); err != nil {
		return nil, err
	}
	next, err := Next(current.Status, EventStart)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(ctx, current); err != nil {
		return nil, err
	}

	now := s.now()
	updated := current.Clone()
	updated.Status = next
	updated.StartedAt = &now
	updated.UpdatedAt = now

	if err := s.commit(ctx, actor, current, updated, change{action: "START_WORK", event: domain.EventRequestStarted}); err != nil {
		return nil, err
	}
	return visibleCopy(updated, actor), nil
}

func (s *service) Complete(ctx context.Context, actor domain.Actor, id uuid.UUID, notes string, uploads []domain.Upload) (*domain.MaintenanceRequest, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, current, EventComplete, false); err != nil {
		return nil, err
	}
	next, err := Next(current.Status, EventComplete)
	if err != nil {
		return nil, err
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, domain.ValidationError("completion notes are required")
	}
	if err := checkVersion(ctx, current); err != nil {
		return nil, err
	}

	objects, err := s.uploadAll(ctx, uploads, operationFolder(current.ID))
	if err != nil {
		return nil, err
	}
	images := s.toImages(current.ID, actor, domain.ImageCompletion, uploads, objects)

	now := s.now()
	updated := current.Clone()
	updated.Status = next
	updated.Notes = &notes
	updated.CompletedAt = &now
	updated.UpdatedAt = now

	ch := change{action: "COMPLETE", event: domain.EventRequestCompleted, images: images}
	if err := s.commit(ctx, actor, current, updated, ch); err != nil {
		s.discard(ctx, objects)
		return nil, err
	}
	return visibleCopy(updated, actor), nil
}

func (s *service) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.MaintenanceRequest, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, current, EventCancel, false); err != nil {
		return nil, err
	}
	next, err := Next(current.Status, EventCancel)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ValidationError("a cancellation reason is required")
	}
	if err := checkVersion(ctx, current); err != nil {
		return nil, err
	}

	now := s.now()
	updated := current.Clone()
	updated.Status = next
	updated.CancellationReason = &reason
	updated.CancelledAt = &now
	updated.UpdatedAt = now

	if err := s.commit(ctx, actor, current, updated, change{action: "CANCEL", event: domain.EventRequestCancelled}); err != nil {
		return nil, err
	}
	return visibleCopy(updated, actor), nil
}

func (s *service) AddComment(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.CreateCommentInput) (*domain.MaintenanceRequest, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, current, EventAddComment, input.IsInternal); err != nil {
		return nil, err
	}
	if _, err := Next(current.Status, EventAddComment); err != nil {
		return nil, err
	}

	now := s.now()
	author := domain.CommentAuthor{ID: actor.ID, Name: actor.Name, Role: actor.Role}
	comment, err := commentlog.Append(input.Content, author, input.IsInternal, now)
	if err != nil {
		return nil, err
	}
	comment.RequestID = current.ID
	if err := checkVersion(ctx, current); err != nil {
		return nil, err
	}

	updated := current.Clone()
	updated.UpdatedAt = now

	ch := change{
		action:   "ADD_COMMENT",
		event:    domain.EventCommentAdded,
		comments: []domain.Comment{comment},
		newValue: map[string]any{"comment_id": comment.ID, "is_internal": comment.IsInternal},
	}
	if err := s.commit(ctx, actor, current, updated, ch); err != nil {
		return nil, err
	}
	return visibleCopy(updated, actor), nil
}

func (s *service) AddImage(ctx context.Context, actor domain.Actor, id uuid.UUID, upload domain.Upload, imageType domain.ImageType) (*domain.MaintenanceRequest, error) {
	current, imageType, err := s.prepareImages(ctx, actor, id, 1, imageType)
	if err != nil {
		return nil, err
	}

	uploads := []domain.Upload{upload}
	objects, err := s.uploadAll(ctx, uploads, operationFolder(current.ID))
	if err != nil {
		return nil, err
	}

	updated, err := s.attachImages(ctx, actor, current, s.toImages(current.ID, actor, imageType, uploads, objects))
	if err != nil {
		s.discard(ctx, objects)
		return nil, err
	}
	return visibleCopy(updated, actor), nil
}

// AddImages uploads files independently. Failed files are reported in the
// result; the request is only written when at least one file made it.
func (s *service) AddImages(ctx context.Context, actor domain.Actor, id uuid.UUID, uploads []domain.Upload, imageType domain.ImageType) (*domain.ImageBatchResult, error) {
	current, imageType, err := s.prepareImages(ctx, actor, id, len(uploads), imageType)
	if err != nil {
		return nil, err
	}

	result := &domain.ImageBatchResult{Added: []domain.RequestImage{}, Failed: []domain.FileFailure{}}
	objects := make([]*domain.StoredObject, len(uploads))
	var firstErr error
	for i, res := range s.uploadEach(ctx, uploads, operationFolder(current.ID)) {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			result.Failed = append(result.Failed, domain.FileFailure{FileName: uploads[i].FileName, Error: res.err.Error()})
			continue
		}
		objects[i] = res.object
	}
	result.FailedN = len(result.Failed)

	if result.FailedN == len(uploads) {
		result.Request = visibleCopy(current, actor)
		return result, fmt.Errorf("all %d uploads failed: %w", len(uploads), firstErr)
	}

	images := s.toImages(current.ID, actor, imageType, uploads, objects)
	updated, err := s.attachImages(ctx, actor, current, images)
	if err != nil {
		s.discard(ctx, objects)
		return nil, err
	}

	result.Request = visibleCopy(updated, actor)
	result.Added = images
	result.Succeeded = len(images)
	return result, nil
}

func (s *service) prepareImages(ctx context.Context, actor domain.Actor, id uuid.UUID, count int, imageType domain.ImageType) (*domain.MaintenanceRequest, domain.ImageType, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if err := authorize(actor, current, EventAddImage, false); err != nil {
		return nil, "", err
	}
	if _, err := Next(current.Status, EventAddImage); err != nil {
		return nil, "", err
	}
	if count == 0 {
		return nil, "", domain.ValidationError("at least one image is required")
	}
	if imageType == "" {
		imageType = domain.ImageAdditional
	}
	if !imageType.IsValid() {
		return nil, "", domain.ValidationError("unknown image type %q", imageType)
	}
	if err := checkVersion(ctx, current); err != nil {
		return nil, "", err
	}
	return current, imageType, nil
}

func (s *service) attachImages(ctx context.Context, actor domain.Actor, current *domain.MaintenanceRequest, images []domain.RequestImage) (*domain.MaintenanceRequest, error) {
	updated := current.Clone()
	updated.UpdatedAt = s.now()

	ch := change{
		action:   "ADD_IMAGES",
		event:    domain.EventImagesAdded,
		images:   images,
		newValue: map[string]any{"images": len(images), "image_type": images[0].ImageType},
	}
	if err := s.commit(ctx, actor, current, updated, ch); err != nil {
		return nil, err
	}
	return updated, nil
}

// load reads the full aggregate with the unfiltered comment thread.
func (s *service) load(ctx context.Context, id uuid.UUID) (*domain.MaintenanceRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images, err := s.imageRepo.ListByRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.Thread(ctx, id, req.Version)
	if err != nil {
		return nil, err
	}

	req.Images = images
	req.Comments = comments
	return req, nil
}

func (s *service) validateStaff(ctx context.Context, staffID uuid.UUID) error {
	if staffID == uuid.Nil {
		return domain.ValidationError("staff_id is required")
	}
	user, err := s.userRepo.GetByID(ctx, staffID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.ValidationError("staff member %s does not exist", staffID)
		}
		return err
	}
	if !user.IsActive || !user.Role.IsStaff() {
		return domain.ValidationError("user %s cannot take maintenance work", staffID)
	}
	return nil
}

func checkVersion(ctx context.Context, req *domain.MaintenanceRequest) error {
	if expected, ok := ExpectedVersion(ctx); ok && expected != req.Version {
		return domain.ConflictError("request %s is at version %d, not %d", req.ID, req.Version, expected)
	}
	return nil
}

type change struct {
	action   string
	event    domain.EventType
	images   []domain.RequestImage
	comments []domain.Comment
	newValue any
}

// commit writes updated, the new rows and an audit entry in one transaction
// guarded by the version current was read at.
func (s *service) commit(ctx context.Context, actor domain.Actor, current, updated *domain.MaintenanceRequest, ch change) error {
	newValue := ch.newValue
	if newValue == nil {
		after := snapshot(updated)
		after.Version = current.Version + 1
		newValue = after
	}
	audit := domain.NewAuditLog(actor, ch.action, updated.ID, snapshot(current), newValue, requestMeta(ctx))

	err := s.requestRepo.Apply(ctx, repository.RequestChange{
		Request:         updated,
		ExpectedVersion: current.Version,
		NewImages:       ch.images,
		NewComments:     ch.comments,
		Audit:           audit,
	})
	if err != nil {
		return err
	}

	updated.Images = append(updated.Images, ch.images...)
	updated.Comments = append(updated.Comments, ch.comments...)

	s.comments.Invalidate(ctx, updated.ID, current.Version)
	s.invalidateStats(ctx)

	event := domain.Event{Type: ch.event, Actor: actor, Request: updated, Images: len(ch.images)}
	if len(ch.comments) > 0 {
		event.Comment = &ch.comments[0]
	}
	s.emit(event)
	return nil
}

func (s *service) invalidateStats(ctx context.Context) {
	if s.redis != nil {
		_ = s.redis.Del(ctx, dashboard.StatsCacheKey).Err()
	}
}

func (s *service) emit(event domain.Event) {
	if s.notifSvc == nil {
		return
	}
	event.Request = event.Request.Clone()
	event.Occurred = s.now()
	go func() {
		if err := s.notifSvc.Emit(context.Background(), event); err != nil {
			slog.Warn("failed to emit maintenance notification",
				"event", event.Type, "request_id", event.Request.ID, "error", err)
		}
	}()
}

type auditState struct {
	Status             domain.RequestStatus `json:"status"`
	AssignedTo         *uuid.UUID           `json:"assigned_to,omitempty"`
	Notes              *string              `json:"notes,omitempty"`
	CancellationReason *string              `json:"cancellation_reason,omitempty"`
	Version            int64                `json:"version"`
}

func snapshot(req *domain.MaintenanceRequest) auditState {
	return auditState{
		Status:             req.Status,
		AssignedTo:         req.AssignedTo,
		Notes:              req.Notes,
		CancellationReason: req.CancellationReason,
		Version:            req.Version,
	}
}

func visibleCopy(req *domain.MaintenanceRequest, actor domain.Actor) *domain.MaintenanceRequest {
	out := req.Clone()
	out.Comments = commentlog.VisibleTo(req.Comments, actor.Role)
	if out.Images == nil {
		out.Images = []domain.RequestImage{}
	}
	return out
}
