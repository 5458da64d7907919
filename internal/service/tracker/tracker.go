// Package tracker projects a maintenance request onto a five step progress
// view. Nothing here is stored; the view is rebuilt from the request on
// every call.
package tracker

import (
	"time"

	"khrental/internal/domain"
	"khrental/internal/pkg/i18n"
	"khrental/internal/service/classifier"
)

type StepKey string

const (
	StepCreated    StepKey = "created"
	StepAssigned   StepKey = "assigned"
	StepScheduled  StepKey = "scheduled"
	StepInProgress StepKey = "in_progress"
	StepCompleted  StepKey = "completed"
)

type Step struct {
	Key         StepKey    `json:"key"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	At          *time.Time `json:"at,omitempty"`
	Description string     `json:"description"`

	// Notes and Images are only filled on the completed step.
	Notes  *string               `json:"notes,omitempty"`
	Images []domain.RequestImage `json:"images,omitempty"`
}

type CancellationNotice struct {
	Reason      string                `json:"reason"`
	CancelledAt *time.Time            `json:"cancelled_at,omitempty"`
	Images      []domain.RequestImage `json:"images"`
}

// Progress holds either Steps or Cancellation, never both.
type Progress struct {
	Status       domain.RequestStatus `json:"status"`
	Steps        []Step               `json:"steps,omitempty"`
	Cancellation *CancellationNotice  `json:"cancellation,omitempty"`
}

func Track(req *domain.MaintenanceRequest, now time.Time) Progress {
	return TrackLocalized(req, now, i18n.DefaultLocale)
}

func TrackLocalized(req *domain.MaintenanceRequest, now time.Time, locale string) Progress {
	if req.Status == domain.StatusCancelled {
		reason := ""
		if req.CancellationReason != nil {
			reason = *req.CancellationReason
		}
		return Progress{
			Status: req.Status,
			Cancellation: &CancellationNotice{
				Reason:      reason,
				CancelledAt: req.CancelledAt,
				Images:      classifier.Normalize(req.Images, now),
			},
		}
	}

	createdAt := req.CreatedAt
	inProgress := req.Status == domain.StatusInProgress || req.Status == domain.StatusCompleted
	completed := req.Status == domain.StatusCompleted

	// Assigned and scheduled both read assignedAt; there is no separate
	// schedule field.
	steps := []Step{
		{Key: StepCreated, Completed: true, At: &createdAt},
		{Key: StepAssigned, Completed: req.AssignedTo != nil, At: req.AssignedAt},
		{Key: StepScheduled, Completed: req.AssignedAt != nil, At: req.AssignedAt},
		{Key: StepInProgress, Completed: inProgress, At: req.StartedAt},
		{Key: StepCompleted, Completed: completed, At: req.CompletedAt},
	}

	if completed {
		last := &steps[len(steps)-1]
		last.Notes = req.Notes
		last.Images = classifier.OfStage(req.Images, domain.ImageCompletion, now)
	}

	for i := range steps {
		steps[i].Title = i18n.Translate(locale, stepTitleKeys[steps[i].Key])
		steps[i].Description = describe(steps[i], locale)
	}

	return Progress{Status: req.Status, Steps: steps}
}

const displayLayout = "02 Jan 2006 15:04"

func describe(step Step, locale string) string {
	switch {
	case step.At != nil:
		return step.At.Format(displayLayout)
	case step.Completed:
		return i18n.Translate(locale, "STEP_DONE")
	default:
		return i18n.Translate(locale, "STEP_WAITING")
	}
}

var stepTitleKeys = map[StepKey]string{
	StepCreated:    "STEP_CREATED",
	StepAssigned:   "STEP_ASSIGNED",
	StepScheduled:  "STEP_SCHEDULED",
	StepInProgress: "STEP_IN_PROGRESS",
	StepCompleted:  "STEP_COMPLETED",
}
