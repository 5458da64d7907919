package lifecycle

import "khrental/internal/domain"

// Event names a lifecycle operation. The value doubles as the verb used in
// error messages.
type Event string

const (
	EventAssign     Event = "assign"
	EventStart      Event = "start"
	EventComplete   Event = "complete"
	EventCancel     Event = "cancel"
	EventAddImage   Event = "add images to"
	EventAddComment Event = "comment on"
)

var transitions = map[Event]map[domain.RequestStatus]domain.RequestStatus{
	EventAssign: {
		domain.StatusPending: domain.StatusAssigned,
	},
	EventStart: {
		domain.StatusAssigned: domain.StatusInProgress,
	},
	EventComplete: {
		domain.StatusInProgress: domain.StatusCompleted,
	},
	EventCancel: {
		domain.StatusPending:    domain.StatusCancelled,
		domain.StatusAssigned:   domain.StatusCancelled,
		domain.StatusInProgress: domain.StatusCancelled,
	},
}

// Next returns the state ev leads to from from. Events that do not change
// state return from unchanged when they are allowed.
func Next(from domain.RequestStatus, ev Event) (domain.RequestStatus, error) {
	switch ev {
	case EventAddComment:
		return from, nil
	case EventAddImage:
		if from.IsTerminal() {
			return from, domain.InvalidTransitionError(from, string(ev))
		}
		return from, nil
	}

	to, ok := transitions[ev][from]
	if !ok {
		return from, domain.InvalidTransitionError(from, string(ev))
	}
	return to, nil
}

// Allowed lists the events that are legal from status, in a stable order.
func Allowed(status domain.RequestStatus) []Event {
	var events []Event
	for _, ev := range []Event{EventAssign, EventStart, EventComplete, EventCancel, EventAddImage, EventAddComment} {
		if _, err := Next(status, ev); err == nil {
			events = append(events, ev)
		}
	}
	return events
}
