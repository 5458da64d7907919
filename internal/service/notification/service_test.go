package notification_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"khrental/internal/domain"
	"khrental/internal/mocks"
	"khrental/internal/service/email"
	"khrental/internal/service/notification"
)

type fixture struct {
	notifRepo *mocks.NotificationRepository
	userRepo  *mocks.UserRepository
	created   []*domain.Notification
}

func newFixture() *fixture {
	f := &fixture{
		notifRepo: new(mocks.NotificationRepository),
		userRepo:  new(mocks.UserRepository),
	}
	f.notifRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) { f.created = append(f.created, args.Get(1).(*domain.Notification)) }).
		Return(nil)
	return f
}

func (f *fixture) recipients() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(f.created))
	for _, n := range f.created {
		ids = append(ids, n.UserID)
	}
	return ids
}

func assignedRequest(renteeID, staffID uuid.UUID) *domain.MaintenanceRequest {
	return &domain.MaintenanceRequest{
		ID:         uuid.New(),
		Title:      "Broken heater",
		Status:     domain.StatusAssigned,
		Priority:   domain.PriorityHigh,
		RenteeID:   renteeID,
		AssignedTo: &staffID,
	}
}

func TestEmit_Recipients(t *testing.T) {
	ctx := context.Background()
	renteeID, staffID := uuid.New(), uuid.New()
	staff := domain.Actor{ID: staffID, Name: "Sam", Role: domain.RoleStaff}
	admin := domain.Actor{ID: uuid.New(), Name: "Ada", Role: domain.RoleAdmin}

	t.Run("Actor Is Not Notified", func(t *testing.T) {
		f := newFixture()
		svc := notification.NewService(f.notifRepo, f.userRepo, nil, "en")

		err := svc.Emit(ctx, domain.Event{Type: domain.EventRequestStarted, Actor: staff, Request: assignedRequest(renteeID, staffID)})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{renteeID}, f.recipients())
		assert.Equal(t, "Work started", f.created[0].Title)
		assert.Equal(t, `Sam started work on "Broken heater".`, f.created[0].Message)
		assert.Equal(t, domain.EventRequestStarted, f.created[0].Type)
	})

	t.Run("Rentee And Assignee", func(t *testing.T) {
		f := newFixture()
		svc := notification.NewService(f.notifRepo, f.userRepo, nil, "")

		err := svc.Emit(ctx, domain.Event{Type: domain.EventRequestCancelled, Actor: admin, Request: assignedRequest(renteeID, staffID)})

		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{renteeID, staffID}, f.recipients())
	})

	t.Run("Internal Comment Skips Rentee", func(t *testing.T) {
		f := newFixture()
		svc := notification.NewService(f.notifRepo, f.userRepo, nil, "en")
		comment := &domain.Comment{ID: uuid.New(), IsInternal: true}

		err := svc.Emit(ctx, domain.Event{Type: domain.EventCommentAdded, Actor: admin, Request: assignedRequest(renteeID, staffID), Comment: comment})

		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{staffID}, f.recipients())
	})

	t.Run("New Request Reaches Admins", func(t *testing.T) {
		f := newFixture()
		svc := notification.NewService(f.notifRepo, f.userRepo, nil, "id")
		rentee := domain.Actor{ID: renteeID, Name: "Rita", Role: domain.RoleRentee}
		otherAdmin := uuid.New()
		f.userRepo.On("GetByRoles", ctx, []domain.Role{domain.RoleAdmin}).
			Return([]domain.User{{ID: admin.ID}, {ID: otherAdmin}}, nil).Once()
		req := &domain.MaintenanceRequest{ID: uuid.New(), Title: "Leak", Status: domain.StatusPending, RenteeID: renteeID}

		err := svc.Emit(ctx, domain.Event{Type: domain.EventRequestCreated, Actor: rentee, Request: req})

		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{admin.ID, otherAdmin}, f.recipients())
	})

	t.Run("Image Count In Message", func(t *testing.T) {
		f := newFixture()
		svc := notification.NewService(f.notifRepo, f.userRepo, nil, "en")

		err := svc.Emit(ctx, domain.Event{Type: domain.EventImagesAdded, Actor: staff, Request: assignedRequest(renteeID, staffID), Images: 3})

		require.NoError(t, err)
		require.Len(t, f.created, 1)
		assert.Equal(t, `Sam added 3 photo(s) to "Broken heater".`, f.created[0].Message)
	})
}

func TestEmit_RowFailuresAreJoined(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	renteeID, staffID := uuid.New(), uuid.New()
	notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool { return n.UserID == renteeID })).Return(assert.AnError)
	notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool { return n.UserID == staffID })).Return(nil)

	svc := notification.NewService(notifRepo, new(mocks.UserRepository), nil, "en")
	err := svc.Emit(ctx, domain.Event{Type: domain.EventRequestCancelled, Actor: domain.Actor{ID: uuid.New()}, Request: assignedRequest(renteeID, staffID)})

	assert.ErrorIs(t, err, assert.AnError)
	notifRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestEmit_SendsEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	emailSvc := new(mocks.EmailService)
	renteeID, staffID := uuid.New(), uuid.New()
	f.userRepo.On("GetByID", ctx, renteeID).Return(&domain.User{ID: renteeID, FullName: "Rita", Email: "rita@example.com"}, nil)

	sent := make(chan email.RequestUpdate, 1)
	emailSvc.On("SendRequestUpdate", mock.Anything, "rita@example.com", mock.Anything).
		Run(func(args mock.Arguments) { sent <- args.Get(2).(email.RequestUpdate) }).
		Return(nil).Once()

	svc := notification.NewService(f.notifRepo, f.userRepo, emailSvc, "en")
	err := svc.Emit(ctx, domain.Event{Type: domain.EventRequestStarted, Actor: domain.Actor{ID: staffID, Name: "Sam"}, Request: assignedRequest(renteeID, staffID)})
	require.NoError(t, err)

	select {
	case update := <-sent:
		assert.Equal(t, "Rita", update.Name)
		assert.Equal(t, "Broken heater", update.RequestTitle)
		assert.Equal(t, domain.StatusAssigned, update.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("email was not sent")
	}
}

func TestEmit_WithoutRequest(t *testing.T) {
	svc := notification.NewService(new(mocks.NotificationRepository), new(mocks.UserRepository), nil, "en")
	assert.Error(t, svc.Emit(context.Background(), domain.Event{Type: domain.EventRequestStarted}))
}

func TestList(t *testing.T) {
	ctx := context.Background()
	notifRepo := new(mocks.NotificationRepository)
	userID := uuid.New()
	notifRepo.On("ListByUser", ctx, userID, true, domain.PaginationParams{Page: 1, PageSize: 100}).
		Return([]domain.Notification{{ID: uuid.New()}}, int64(101), nil).Once()

	svc := notification.NewService(notifRepo, new(mocks.UserRepository), nil, "en")
	page, err := svc.List(ctx, userID, true, domain.PaginationParams{Page: 0, PageSize: 500})

	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNext)
}
