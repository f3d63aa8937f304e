package access

import (
	"context"
	"errors"
	"testing"

	"github.com/isotoolkit/keeper/internal/logger"
)

const testOwner int64 = 1851080851

func newTestGate() *Gate {
	return NewGate(testOwner, nil, logger.New("error", false))
}

func TestGate_OwnerAlwaysAuthorized(t *testing.T) {
	g := newTestGate()
	if !g.Authorized(testOwner) {
		t.Error("Authorized(owner) = false, want true")
	}
}

func TestGate_UnknownOperatorDenied(t *testing.T) {
	g := newTestGate()
	if g.Authorized(42) {
		t.Error("Authorized(42) = true for unknown operator, want false")
	}
}

func TestGate_AllowThenDeny(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if err := g.Allow(ctx, testOwner, 42); err != nil {
		t.Fatalf("Allow() = %v, want nil", err)
	}
	if !g.Authorized(42) {
		t.Error("Authorized(42) = false after Allow, want true")
	}

	if err := g.Deny(ctx, testOwner, 42); err != nil {
		t.Fatalf("Deny() = %v, want nil", err)
	}
	if g.Authorized(42) {
		t.Error("Authorized(42) = true after Deny, want false")
	}
}

func TestGate_DenyOwnerAlwaysFails(t *testing.T) {
	g := newTestGate()

	err := g.Deny(context.Background(), testOwner, testOwner)
	if !errors.Is(err, ErrOwnerImmutable) {
		t.Errorf("Deny(owner, owner) = %v, want ErrOwnerImmutable", err)
	}
	if !g.Authorized(testOwner) {
		t.Error("owner lost access after failed Deny")
	}
}

func TestGate_MutationsAreOwnerOnly(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if err := g.Allow(ctx, 42, 43); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Allow() by non-owner = %v, want ErrNotOwner", err)
	}
	if err := g.Deny(ctx, 42, 43); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Deny() by non-owner = %v, want ErrNotOwner", err)
	}
	if g.Authorized(43) {
		t.Error("Authorized(43) = true after rejected Allow, want false")
	}
}

func TestGate_DuplicateAndMissing(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if err := g.Allow(ctx, testOwner, 42); err != nil {
		t.Fatalf("Allow() = %v, want nil", err)
	}
	if err := g.Allow(ctx, testOwner, 42); !errors.Is(err, ErrAlreadyAllowed) {
		t.Errorf("second Allow() = %v, want ErrAlreadyAllowed", err)
	}
	if err := g.Allow(ctx, testOwner, testOwner); !errors.Is(err, ErrAlreadyAllowed) {
		t.Errorf("Allow(owner) = %v, want ErrAlreadyAllowed", err)
	}
	if err := g.Deny(ctx, testOwner, 99); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("Deny() of unknown operator = %v, want ErrNotAllowed", err)
	}
}

func TestGate_OperatorsSortedAndOwnerExcluded(t *testing.T) {
	g := newTestGate()
	g.Seed([]int64{30, 10, 20, testOwner})

	ids := g.Operators()
	if len(ids) != 3 {
		t.Fatalf("Operators() returned %d ids, want 3 (owner excluded)", len(ids))
	}
	for i, want := range []int64{10, 20, 30} {
		if ids[i] != want {
			t.Errorf("Operators()[%d] = %d, want %d", i, ids[i], want)
		}
	}
}

type recordingStore struct {
	added   []int64
	removed []int64
	fail    bool
}

func (s *recordingStore) AddOperator(_ context.Context, id int64) error {
	if s.fail {
		return errors.New("store unavailable")
	}
	s.added = append(s.added, id)
	return nil
}

func (s *recordingStore) RemoveOperator(_ context.Context, id int64) error {
	if s.fail {
		return errors.New("store unavailable")
	}
	s.removed = append(s.removed, id)
	return nil
}

func (s *recordingStore) Operators(_ context.Context) ([]int64, error) {
	return s.added, nil
}

func TestGate_PersistenceIsBestEffort(t *testing.T) {
	store := &recordingStore{fail: true}
	g := NewGate(testOwner, store, logger.New("error", false))
	ctx := context.Background()

	// A failing store must not fail the mutation.
	if err := g.Allow(ctx, testOwner, 42); err != nil {
		t.Fatalf("Allow() = %v with failing store, want nil", err)
	}
	if !g.Authorized(42) {
		t.Error("Authorized(42) = false, memory set should win over store failure")
	}

	store.fail = false
	if err := g.Allow(ctx, testOwner, 43); err != nil {
		t.Fatalf("Allow() = %v, want nil", err)
	}
	if len(store.added) != 1 || store.added[0] != 43 {
		t.Errorf("store.added = %v, want [43]", store.added)
	}
}
