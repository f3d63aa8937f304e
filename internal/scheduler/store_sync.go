package scheduler

import (
	"context"

	"github.com/isotoolkit/keeper/internal/access"
	"github.com/isotoolkit/keeper/internal/folders"
	"github.com/isotoolkit/keeper/internal/logger"
	redisstore "github.com/isotoolkit/keeper/internal/store/redis"
)

// StoreSyncer restores the allow-set and folder labels from Redis into
// memory on startup, so a restart does not silently revoke everyone.
type StoreSyncer struct {
	store   *redisstore.Store
	gate    *access.Gate
	folders *folders.Manager
	logger  logger.Logger
}

// NewStoreSyncer creates a new store syncer
func NewStoreSyncer(
	store *redisstore.Store,
	gate *access.Gate,
	mgr *folders.Manager,
	log logger.Logger,
) *StoreSyncer {
	return &StoreSyncer{
		store:   store,
		gate:    gate,
		folders: mgr,
		logger:  log,
	}
}

// Sync loads persisted state from Redis into the in-memory structures.
func (ss *StoreSyncer) Sync(ctx context.Context) error {
	ss.logger.Info("syncing allow-set and folders from redis")

	operators, err := ss.store.Operators(ctx)
	if err != nil {
		return err
	}
	if len(operators) > 0 {
		ss.gate.Seed(operators)
	}

	allFolders, err := ss.store.AllFolders(ctx)
	if err != nil {
		return err
	}
	if len(allFolders) > 0 {
		ss.folders.Seed(allFolders)
	}

	ss.logger.Info("synced state from redis",
		logger.Int("operators", len(operators)),
		logger.Int("operators_with_folders", len(allFolders)))

	return nil
}
