package user

import "context"

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID     string        `json:"id"`
	SessionID  string        `json:"-"`
	Email      string        `json:"email"`
	Name       string        `json:"name"`
	Role       Role          `json:"role"`
	Status     AccountStatus `json:"status"`
	EmployeeID string        `json:"employeeId,omitempty"`
}

func (a Actor) IsManager() bool {
	return a.Role == RoleAdmin || a.Role == RoleHR
}

func (a Actor) IsActive() bool {
	return a.Status == StatusActive
}

func (a Actor) Can(p Permission) bool {
	return HasPermission(a.Role, p)
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns ErrUnauthenticated when no actor is attached.
func ActorFromContext(ctx context.Context) (Actor, error) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok {
		return Actor{}, ErrUnauthenticated
	}
	return a, nil
}
