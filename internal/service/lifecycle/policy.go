package lifecycle

import (
	"github.com/google/uuid"

	"khrental/internal/domain"
)

// authorize checks whether actor may perform ev on req. It looks at roles
// and ownership only; whether the state allows ev is decided afterwards.
func authorize(actor domain.Actor, req *domain.MaintenanceRequest, ev Event, internalComment bool) error {
	switch {
	case actor.IsAdmin():
		return nil

	case actor.Role.IsStaff():
		if req.IsAssignedTo(actor.ID) {
			return nil
		}
		return domain.UnauthorizedError("only the assignee may %s this request", ev)

	case actor.HasRole(domain.RoleRentee, domain.RoleRequester):
		if req.RenteeID != actor.ID {
			return domain.UnauthorizedError("request belongs to another rentee")
		}
		switch ev {
		case EventCancel:
			if req.Status != domain.StatusPending {
				return domain.UnauthorizedError("rentees may only cancel pending requests")
			}
			return nil
		case EventAddImage:
			return nil
		case EventAddComment:
			if internalComment {
				return domain.UnauthorizedError("rentees cannot post internal comments")
			}
			return nil
		}
		return domain.UnauthorizedError("rentees may not %s a request", ev)
	}

	return domain.UnauthorizedError("role %q may not %s a request", actor.Role, ev)
}

// authorizeAssign covers assignment. Staff may take an unassigned request for
// themselves or re-confirm one they already hold, but cannot hand work to
// someone else.
func authorizeAssign(actor domain.Actor, req *domain.MaintenanceRequest, staffID uuid.UUID) error {
	switch {
	case actor.IsAdmin():
		return nil
	case actor.Role.IsStaff():
		if staffID != actor.ID {
			return domain.UnauthorizedError("staff may only assign requests to themselves")
		}
		if req.AssignedTo != nil && !req.IsAssignedTo(actor.ID) {
			return domain.UnauthorizedError("request is already assigned to someone else")
		}
		return nil
	}
	return domain.UnauthorizedError("role %q may not assign requests", actor.Role)
}

// authorizeView decides read access. Rentees only see their own requests.
func authorizeView(actor domain.Actor, req *domain.MaintenanceRequest) error {
	if actor.IsAdmin() || actor.Role.IsStaff() {
		return nil
	}
	if actor.HasRole(domain.RoleRentee, domain.RoleRequester) && req.RenteeID == actor.ID {
		return nil
	}
	return domain.UnauthorizedError("request belongs to another rentee")
}

// authorizeCreate returns the rentee the new request is filed for.
func authorizeCreate(actor domain.Actor, renteeID *uuid.UUID) (uuid.UUID, error) {
	switch {
	case actor.IsAdmin() || actor.Role.IsStaff():
		if renteeID == nil || *renteeID == uuid.Nil {
			return uuid.Nil, domain.ValidationError("rentee_id is required")
		}
		return *renteeID, nil
	case actor.HasRole(domain.RoleRentee, domain.RoleRequester):
		if renteeID != nil && *renteeID != uuid.Nil && *renteeID != actor.ID {
			return uuid.Nil, domain.UnauthorizedError("rentees may only report their own requests")
		}
		return actor.ID, nil
	}
	return uuid.Nil, domain.UnauthorizedError("role %q may not create requests", actor.Role)
}
