package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-printshop/gate"
)

type member struct {
	ID   uint
	Role string
}

func readOnly(_ context.Context, u member, action gate.Action, _ any) bool {
	return u.Role == "admin" || action == gate.ActionView || action == gate.ActionList
}

func TestGate_ZeroSubject(t *testing.T) {
	g := gate.NewGate[member]()
	g.Register("order", gate.PolicyFunc[member](readOnly))

	if err := g.Authorize(context.Background(), member{}, gate.ActionView, "order", nil); err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestGate_NoPolicy(t *testing.T) {
	g := gate.NewGate[member]()
	err := g.Authorize(context.Background(), member{ID: 1}, gate.ActionView, "unknown", nil)
	if err != gate.ErrNoPolicyDefined {
		t.Errorf("expected ErrNoPolicyDefined, got %v", err)
	}
}

func TestGate_Fallback(t *testing.T) {
	g := gate.NewGate[member]()
	g.Fallback(gate.PolicyFunc[member](readOnly))

	op := member{ID: 2, Role: "operator"}
	if !g.Can(context.Background(), op, gate.ActionList, "anything", nil) {
		t.Error("fallback should allow list")
	}
	if g.Can(context.Background(), op, gate.ActionDelete, "anything", nil) {
		t.Error("fallback should deny delete")
	}
}

func TestGate_RegisteredWinsOverFallback(t *testing.T) {
	g := gate.NewGate[member]()
	g.Fallback(gate.PolicyFunc[member](func(context.Context, member, gate.Action, any) bool { return false }))
	g.Register("order", gate.PolicyFunc[member](readOnly))

	op := member{ID: 2, Role: "operator"}
	if !g.Can(context.Background(), op, gate.ActionView, "order", nil) {
		t.Error("registered policy should answer for order")
	}
	if g.Can(context.Background(), op, gate.ActionView, "client", nil) {
		t.Error("fallback should answer for client")
	}
}

func TestGate_AdminAllowed(t *testing.T) {
	g := gate.NewGate[member]()
	g.Register("material", gate.PolicyFunc[member](readOnly))
	if err := g.Authorize(context.Background(), member{ID: 1, Role: "admin"}, gate.ActionDelete, "material", nil); err != nil {
		t.Errorf("expected admin to be allowed, got %v", err)
	}
}
