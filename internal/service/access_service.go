package service

import (
	"context"

	"github.com/mentorportal/mentorportal-api/internal/models"
	appErrors "github.com/mentorportal/mentorportal-api/pkg/errors"
)

// Caller is the resolved identity of the requesting user. Every operation
// receives it explicitly; nothing reads ambient request state.
type Caller struct {
	ID   int64
	Role models.UserRole
}

// CallerFromClaims builds a Caller from verified token claims.
func CallerFromClaims(claims *models.JWTClaims) Caller {
	if claims == nil {
		return Caller{}
	}
	return Caller{ID: claims.UserID, Role: claims.Role}
}

type accessPairingRepository interface {
	IsPaired(ctx context.Context, mentorID, employeeID int64) (bool, error)
}

// AccessService is the stateless access-control evaluator consulted before
// every goal, task, and review operation. All grants derive from ownership
// or from the pairing table; nothing is stored per resource, so task access
// resolves transitively through the parent goal's employee and cannot drift
// from the goal rule.
type AccessService struct {
	pairings accessPairingRepository
}

// NewAccessService constructs an AccessService instance.
func NewAccessService(pairings accessPairingRepository) *AccessService {
	return &AccessService{pairings: pairings}
}

// CanActOnEmployee decides read/write/delete access to resources owned by
// the given employee. Employees act only on their own resources; mentors act
// only through an active pairing.
func (s *AccessService) CanActOnEmployee(ctx context.Context, caller Caller, employeeID int64) error {
	switch caller.Role {
	case models.RoleEmployee:
		if caller.ID == employeeID {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this resource")
	case models.RoleMentor:
		paired, err := s.pairings.IsPaired(ctx, caller.ID, employeeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve pairing")
		}
		if paired {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, "you are not paired with this employee")
	default:
		return appErrors.Clone(appErrors.ErrForbidden, "unrecognised role")
	}
}

// CanAccessGoal applies the goal rule against the goal's owner.
func (s *AccessService) CanAccessGoal(ctx context.Context, caller Caller, goal *models.Goal) error {
	return s.CanActOnEmployee(ctx, caller, goal.EmployeeID)
}

// CanCreateGoal restricts goal creation to the employee role; the owning
// employee id is always forced to the caller's own id.
func (s *AccessService) CanCreateGoal(caller Caller) error {
	if caller.Role != models.RoleEmployee {
		return appErrors.Clone(appErrors.ErrForbidden, "only employees can create goals")
	}
	return nil
}

// CanCreateReview rejects self-reviews. Either role may review the other.
func (s *AccessService) CanCreateReview(caller Caller, revieweeID int64) error {
	if caller.ID == revieweeID {
		return appErrors.Clone(appErrors.ErrSelfReference, "cannot review yourself")
	}
	return nil
}

// CanReadReview decides single-review visibility: the reviewer and reviewee
// always may read; a mentor additionally may read through a pairing with the
// reviewee.
func (s *AccessService) CanReadReview(ctx context.Context, caller Caller, review *models.Review) error {
	if caller.ID == review.ReviewerID || caller.ID == review.RevieweeID {
		return nil
	}
	if caller.Role == models.RoleMentor {
		paired, err := s.pairings.IsPaired(ctx, caller.ID, review.RevieweeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve pairing")
		}
		if paired {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "you do not have access to this review")
}
