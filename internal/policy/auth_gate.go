// Package policy wires the role-based authorization rules onto a gate.
package policy

import (
	"context"
	"net/http"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/gate"
	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/models"
	"gorm.io/gorm"
)

// Subject is the authenticated user as seen by policies.
type Subject struct {
	ID   uint
	Role string
}

// Resource type names.
const (
	ResourceClient   = "client"
	ResourceProduct  = "product"
	ResourceMaterial = "material"
	ResourceOrder    = "order"
	ResourceUser     = "user"
	ResourceReport   = "report"
)

// Resolver loads the subject for a user id.
type Resolver func(ctx context.Context, uid uint) (Subject, error)

// DBResolver reads the user's role from the users table.
func DBResolver(db *gorm.DB) Resolver {
	return func(ctx context.Context, uid uint) (Subject, error) {
		var u models.User
		if err := db.WithContext(ctx).Select("id", "role").First(&u, uid).Error; err != nil {
			return Subject{}, err
		}
		return Subject{ID: u.ID, Role: u.Role}, nil
	}
}

// AuthGate couples the gate with the resolver used to identify the caller.
type AuthGate struct {
	Gate    *gate.Gate[Subject]
	resolve Resolver
}

// NewAuthGate registers the shop's rules:
//   - admins may do anything;
//   - operators may read and write business records and adjust stock, but
//     not delete records or manage users.
func NewAuthGate(resolve Resolver) *AuthGate {
	g := gate.NewGate[Subject]()
	g.Fallback(gate.PolicyFunc[Subject](operatorPolicy))
	g.Register(ResourceUser, gate.PolicyFunc[Subject](adminOnly))
	return &AuthGate{Gate: g, resolve: resolve}
}

func adminOnly(_ context.Context, s Subject, _ gate.Action, _ any) bool {
	return s.Role == models.RoleAdmin
}

func operatorPolicy(_ context.Context, s Subject, action gate.Action, _ any) bool {
	switch s.Role {
	case models.RoleAdmin:
		return true
	case models.RoleOperator:
		return action != gate.ActionDelete && action != gate.ActionManage
	}
	return false
}

// Authorize checks the caller in ctx against resourceType/action.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	uid, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	s, err := ag.resolve(ctx, uid)
	if err != nil {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, s, action, resourceType, resource)
}

// Can is Authorize as a bool.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string) bool {
	return ag.Authorize(ctx, action, resourceType, nil) == nil
}

// RequirePermission returns middleware answering 403 JSON when the caller
// may not perform action on resourceType.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.Can(r.Context(), action, resourceType) {
				httpx.JSONError(w, http.StatusForbidden, "forbidden", map[string]string{
					"resource": resourceType, "action": string(action),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
