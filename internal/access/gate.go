package access

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/isotoolkit/keeper/internal/logger"
)

var (
	// ErrNotOwner is returned when a non-owner attempts an owner-only
	// mutation. This failure is visible to the caller, unlike the silent
	// drop for unauthorized operators in Authorized.
	ErrNotOwner = errors.New("only the owner can manage permissions")
	// ErrOwnerImmutable is returned when revoking the owner's own access.
	ErrOwnerImmutable = errors.New("the owner's access cannot be revoked")
	// ErrAlreadyAllowed is returned when granting an operator that is
	// already authorized.
	ErrAlreadyAllowed = errors.New("operator is already authorized")
	// ErrNotAllowed is returned when revoking an operator that is not in
	// the allow-set.
	ErrNotAllowed = errors.New("operator is not in the allow list")
)

// Store is the durable backing for the allow-set. Persistence is best
// effort: the in-memory set is the primary and a store failure never fails
// the mutation.
type Store interface {
	AddOperator(ctx context.Context, id int64) error
	RemoveOperator(ctx context.Context, id int64) error
	Operators(ctx context.Context) ([]int64, error)
}

// Gate decides whether an operator may use the bot. The fixed owner is
// always authorized and can never be removed; everyone else must be in the
// mutable allow-set.
type Gate struct {
	mu      sync.RWMutex
	owner   int64
	allowed map[int64]struct{}
	store   Store // nil when running memory-only
	logger  logger.Logger
}

func NewGate(owner int64, store Store, log logger.Logger) *Gate {
	return &Gate{
		owner:   owner,
		allowed: make(map[int64]struct{}),
		store:   store,
		logger:  log,
	}
}

// Authorized reports whether id may use gated commands. Callers must
// produce no observable response when this returns false.
func (g *Gate) Authorized(id int64) bool {
	if id == g.owner {
		return true
	}

	g.mu.RLock()
	_, ok := g.allowed[id]
	g.mu.RUnlock()

	if !ok {
		g.logger.Info("unauthorized access attempt",
			logger.Int64("operator_id", id))
	}
	return ok
}

// Owner returns the fixed owner identifier.
func (g *Gate) Owner() int64 {
	return g.owner
}

// Allow grants target access. Owner-only.
func (g *Gate) Allow(ctx context.Context, actor, target int64) error {
	if actor != g.owner {
		return ErrNotOwner
	}
	if target == g.owner {
		return ErrAlreadyAllowed
	}

	g.mu.Lock()
	if _, ok := g.allowed[target]; ok {
		g.mu.Unlock()
		return ErrAlreadyAllowed
	}
	g.allowed[target] = struct{}{}
	g.mu.Unlock()

	g.persistAdd(ctx, target)
	g.logger.Info("operator granted access",
		logger.Int64("operator_id", target))
	return nil
}

// Deny revokes target's access. Owner-only; revoking the owner always
// fails so the owner can never be locked out.
func (g *Gate) Deny(ctx context.Context, actor, target int64) error {
	if actor != g.owner {
		return ErrNotOwner
	}
	if target == g.owner {
		return ErrOwnerImmutable
	}

	g.mu.Lock()
	if _, ok := g.allowed[target]; !ok {
		g.mu.Unlock()
		return ErrNotAllowed
	}
	delete(g.allowed, target)
	g.mu.Unlock()

	g.persistRemove(ctx, target)
	g.logger.Info("operator access revoked",
		logger.Int64("operator_id", target))
	return nil
}

// Operators returns the allow-set (owner excluded), sorted for stable
// display.
func (g *Gate) Operators() []int64 {
	g.mu.RLock()
	ids := make([]int64, 0, len(g.allowed))
	for id := range g.allowed {
		ids = append(ids, id)
	}
	g.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count returns the size of the allow-set, owner excluded.
func (g *Gate) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.allowed)
}

// Seed merges ids into the allow-set without touching the store. Used by
// the startup sync and the optional seed file. The owner is never stored.
func (g *Gate) Seed(ids []int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		if id == g.owner {
			continue
		}
		g.allowed[id] = struct{}{}
	}
}

func (g *Gate) persistAdd(ctx context.Context, id int64) {
	if g.store == nil {
		return
	}
	if err := g.store.AddOperator(ctx, id); err != nil {
		g.logger.Warn("failed to persist operator grant",
			logger.Int64("operator_id", id),
			logger.Error(err))
	}
}

func (g *Gate) persistRemove(ctx context.Context, id int64) {
	if g.store == nil {
		return
	}
	if err := g.store.RemoveOperator(ctx, id); err != nil {
		g.logger.Warn("failed to persist operator revocation",
			logger.Int64("operator_id", id),
			logger.Error(err))
	}
}
