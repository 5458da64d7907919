package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"khrental/internal/domain"
)

func TestNext(t *testing.T) {
	statuses := []domain.RequestStatus{
		domain.StatusPending, domain.StatusAssigned, domain.StatusInProgress,
		domain.StatusCompleted, domain.StatusCancelled,
	}
	expected := map[Event]map[domain.RequestStatus]domain.RequestStatus{
		EventAssign:   {domain.StatusPending: domain.StatusAssigned},
		EventStart:    {domain.StatusAssigned: domain.StatusInProgress},
		EventComplete: {domain.StatusInProgress: domain.StatusCompleted},
		EventCancel: {
			domain.StatusPending:    domain.StatusCancelled,
			domain.StatusAssigned:   domain.StatusCancelled,
			domain.StatusInProgress: domain.StatusCancelled,
		},
	}

	for ev, legal := range expected {
		for _, from := range statuses {
			to, err := Next(from, ev)
			if want, ok := legal[from]; ok {
				assert.NoError(t, err, "%s from %s", ev, from)
				assert.Equal(t, want, to)
				continue
			}
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, "%s from %s", ev, from)
			assert.Equal(t, from, to)
		}
	}
}

func TestNext_SideEvents(t *testing.T) {
	for _, from := range []domain.RequestStatus{domain.StatusPending, domain.StatusAssigned, domain.StatusInProgress} {
		to, err := Next(from, EventAddImage)
		assert.NoError(t, err)
		assert.Equal(t, from, to)
	}

	for _, from := range []domain.RequestStatus{domain.StatusCompleted, domain.StatusCancelled} {
		_, err := Next(from, EventAddImage)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)

		to, err := Next(from, EventAddComment)
		assert.NoError(t, err)
		assert.Equal(t, from, to)
	}
}

func TestAllowed(t *testing.T) {
	assert.Equal(t, []Event{EventAssign, EventCancel, EventAddImage, EventAddComment}, Allowed(domain.StatusPending))
	assert.Equal(t, []Event{EventStart, EventCancel, EventAddImage, EventAddComment}, Allowed(domain.StatusAssigned))
	assert.Equal(t, []Event{EventComplete, EventCancel, EventAddImage, EventAddComment}, Allowed(domain.StatusInProgress))
	assert.Equal(t, []Event{EventAddComment}, Allowed(domain.StatusCompleted))
	assert.Equal(t, []Event{EventAddComment}, Allowed(domain.StatusCancelled))
}

func TestInvalidTransitionMessage(t *testing.T) {
	_, err := Next(domain.StatusPending, EventStart)
	assert.EqualError(t, err, "invalid transition: cannot start a pending request")
}
