// Package gate is a small policy registry for authorization decisions.
// Policies are registered per resource type ("order", "material"...) and
// asked whether a subject may perform an action. The subject type is generic
// so callers can authorize plain ids, user structs or claims.
package gate

import (
	"context"
	"sync"
)

// Policy decides whether user may perform action on resource. resource is nil
// for list and create checks.
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}

// Gate maps resource types to policies. A fallback policy, when set, answers
// for resource types without their own policy.
type Gate[U comparable] struct {
	mu       sync.RWMutex
	policies map[string]Policy[U]
	fallback Policy[U]
}

func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register sets the policy for resourceType, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.policies[resourceType] = p
}

// Fallback sets the policy used for unregistered resource types.
func (g *Gate[U]) Fallback(p Policy[U]) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fallback = p
}

// Authorize returns ErrUnauthorized for a zero subject or a denied action and
// ErrNoPolicyDefined when nothing can answer for resourceType.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	g.mu.RLock()
	p, ok := g.policies[resourceType]
	if !ok {
		p, ok = g.fallback, g.fallback != nil
	}
	g.mu.RUnlock()
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is Authorize as a bool.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
