package facade_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"khrental/internal/domain"
	"khrental/internal/mocks"
	"khrental/internal/pkg/i18n"
	"khrental/internal/service/facade"
	"khrental/internal/service/tracker"
)

var (
	now   = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	admin = domain.Actor{ID: uuid.New(), Name: "Ada", Role: domain.RoleAdmin}
)

func newFacade(engine *mocks.LifecycleService) facade.Service {
	f := facade.NewService(engine, "en")
	f.SetClock(func() time.Time { return now })
	return f
}

func stored(status domain.RequestStatus, version int64) *domain.MaintenanceRequest {
	return &domain.MaintenanceRequest{
		ID:       uuid.New(),
		Title:    "Leaking tap",
		Status:   status,
		Version:  version,
		Images:   []domain.RequestImage{},
		Comments: []domain.Comment{},
	}
}

func TestMutationRefetches(t *testing.T) {
	ctx := context.Background()
	engine := new(mocks.LifecycleService)
	req := stored(domain.StatusAssigned, 4)
	staffID := uuid.New()

	written := req.Clone()
	written.Version = 4
	fresh := req.Clone()
	fresh.Version = 5
	fresh.AssignedTo = &staffID

	engine.On("Assign", ctx, admin, req.ID, staffID).Return(written, nil).Once()
	engine.On("Get", ctx, admin, req.ID).Return(fresh, nil).Once()

	detail, err := newFacade(engine).Assign(ctx, admin, req.ID, staffID)

	require.NoError(t, err)
	assert.Equal(t, int64(5), detail.Request.Version)
	assert.Equal(t, domain.StatusAssigned, detail.Progress.Status)
	assert.Len(t, detail.Progress.Steps, 5)
	assert.Empty(t, detail.Gallery)
	engine.AssertExpectations(t)
}

func TestRefetchFailureFallsBackToWrittenState(t *testing.T) {
	ctx := context.Background()
	engine := new(mocks.LifecycleService)
	req := stored(domain.StatusInProgress, 2)

	engine.On("StartWork", ctx, admin, req.ID).Return(req, nil).Once()
	engine.On("Get", ctx, admin, req.ID).Return(nil, domain.StorageError("load", errors.New("timeout"))).Once()

	detail, err := newFacade(engine).StartWork(ctx, admin, req.ID)

	require.NoError(t, err)
	assert.Equal(t, req.ID, detail.Request.ID)
}

func TestErrorsCarryMessageAndCurrentState(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		err  error
		kind domain.ErrorKind
	}{
		{"Validation", domain.ValidationError("a cancellation reason is required"), domain.KindValidation},
		{"Transition", domain.InvalidTransitionError(domain.StatusPending, "start"), domain.KindInvalidTransition},
		{"Unauthorized", domain.UnauthorizedError("nope"), domain.KindUnauthorized},
		{"Conflict", domain.ConflictError("stale"), domain.KindConflict},
		{"Storage", domain.StorageError("commit", errors.New("connection refused")), domain.KindStorage},
		{"Unclassified", errors.New("boom"), domain.KindStorage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			engine := new(mocks.LifecycleService)
			req := stored(domain.StatusPending, 1)
			engine.On("Cancel", ctx, admin, req.ID, "").Return(nil, tc.err).Once()
			engine.On("Get", ctx, admin, req.ID).Return(req, nil).Once()

			_, err := newFacade(engine).Cancel(ctx, admin, req.ID, "")

			var fe *facade.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.kind, fe.Kind)
			assert.Equal(t, i18n.Translate("en", string(tc.kind)), fe.UserMessage())
			assert.ErrorIs(t, err, tc.err)
			require.NotNil(t, fe.Current)
			assert.Equal(t, domain.StatusPending, fe.Current.Request.Status)
		})
	}
}

func TestNotFoundSkipsReload(t *testing.T) {
	ctx := context.Background()
	engine := new(mocks.LifecycleService)
	id := uuid.New()
	engine.On("StartWork", ctx, admin, id).Return(nil, domain.NotFoundError("maintenance request %s", id)).Once()

	_, err := newFacade(engine).StartWork(ctx, admin, id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	engine.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestMessagesFollowContextLocale(t *testing.T) {
	ctx := i18n.WithLocale(context.Background(), "id")
	engine := new(mocks.LifecycleService)
	id := uuid.New()
	engine.On("Get", ctx, admin, id).Return(nil, domain.NotFoundError("gone")).Once()

	_, err := newFacade(engine).GetRequest(ctx, admin, id)

	var fe *facade.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Permintaan perbaikan tidak ditemukan.", fe.UserMessage())
}

func TestGetRequestIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine := new(mocks.LifecycleService)
	req := stored(domain.StatusCompleted, 7)
	notes := "Fixed"
	req.Notes = &notes
	uploaded := now.Add(-time.Hour)
	req.Images = []domain.RequestImage{
		{ID: uuid.New(), ImageURL: "https://cdn/b.jpg", ImageType: domain.ImageCompletion, UploadedAt: &uploaded},
		{ID: uuid.New(), ImageURL: "https://cdn/a.jpg", ImageType: domain.ImageInitial, UploadedAt: &uploaded},
	}
	engine.On("Get", ctx, admin, req.ID).Return(req, nil).Twice()

	f := newFacade(engine)
	first, err := f.GetRequest(ctx, admin, req.ID)
	require.NoError(t, err)
	second, err := f.GetRequest(ctx, admin, req.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.Gallery, 2)
	assert.Equal(t, domain.ImageInitial, first.Gallery[0].Stage)
	assert.Equal(t, domain.ImageCompletion, first.Gallery[1].Stage)
	assert.Equal(t, tracker.StepCompleted, first.Progress.Steps[4].Key)
	assert.Len(t, first.Progress.Steps[4].Images, 1)
}

func TestAddImages(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial", func(t *testing.T) {
		engine := new(mocks.LifecycleService)
		req := stored(domain.StatusAssigned, 2)
		result := &domain.ImageBatchResult{
			Request:   req,
			Added:     []domain.RequestImage{{ID: uuid.New(), ImageURL: "https://cdn/a.jpg"}},
			Failed:    []domain.FileFailure{{FileName: "b.txt", Error: "not an image"}},
			Succeeded: 1,
			FailedN:   1,
		}
		engine.On("AddImages", ctx, admin, req.ID, mock.Anything, domain.ImageProgress).Return(result, nil).Once()
		engine.On("Get", ctx, admin, req.ID).Return(req, nil).Once()

		batch, err := newFacade(engine).AddImages(ctx, admin, req.ID, nil, domain.ImageProgress)

		require.NoError(t, err)
		assert.Equal(t, 1, batch.Succeeded)
		assert.Equal(t, 1, batch.FailedN)
		require.NotNil(t, batch.Detail)
		assert.Equal(t, req.ID, batch.Request.ID)
	})

	t.Run("All Failed", func(t *testing.T) {
		engine := new(mocks.LifecycleService)
		req := stored(domain.StatusAssigned, 2)
		result := &domain.ImageBatchResult{
			Request: req,
			Failed:  []domain.FileFailure{{FileName: "a.jpg", Error: "storage"}},
			FailedN: 1,
		}
		engine.On("AddImages", ctx, admin, req.ID, mock.Anything, domain.ImageType("")).
			Return(result, domain.StorageError("upload", errors.New("down"))).Once()
		engine.On("Get", ctx, admin, req.ID).Return(req, nil).Once()

		batch, err := newFacade(engine).AddImages(ctx, admin, req.ID, nil, "")

		assert.ErrorIs(t, err, domain.ErrStorage)
		require.NotNil(t, batch)
		assert.Equal(t, 1, batch.FailedN)
		require.NotNil(t, batch.Detail)
	})

	t.Run("Rejected", func(t *testing.T) {
		engine := new(mocks.LifecycleService)
		id := uuid.New()
		engine.On("AddImages", ctx, admin, id, mock.Anything, domain.ImageType("")).
			Return(nil, domain.InvalidTransitionError(domain.StatusCompleted, "add images to")).Once()
		engine.On("Get", ctx, admin, id).Return(stored(domain.StatusCompleted, 9), nil).Once()

		batch, err := newFacade(engine).AddImages(ctx, admin, id, nil, "")

		assert.Nil(t, batch)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestComments(t *testing.T) {
	ctx := context.Background()
	engine := new(mocks.LifecycleService)
	req := stored(domain.StatusAssigned, 1)
	req.Comments = []domain.Comment{{Content: "public"}, {Content: "internal", IsInternal: true}}
	rentee := domain.Actor{ID: uuid.New(), Role: domain.RoleRentee}
	engine.On("Get", ctx, rentee, req.ID).Return(req, nil).Once()

	comments, err := newFacade(engine).Comments(ctx, rentee, req.ID)

	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "public", comments[0].Content)
}
