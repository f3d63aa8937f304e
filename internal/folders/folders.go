package folders

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/isotoolkit/keeper/internal/domain"
	"github.com/isotoolkit/keeper/internal/logger"
)

var (
	ErrExists   = errors.New("folder already exists")
	ErrNotFound = errors.New("folder not found")
)

// Store is the durable backing for folder labels, best effort like the
// allow-set store.
type Store interface {
	SaveFolders(ctx context.Context, operator int64, folders []*domain.Folder) error
	AllFolders(ctx context.Context) (map[int64][]*domain.Folder, error)
}

// Manager keeps per-operator ordered folder labels. The last folder in an
// operator's list is the current one; setting a folder moves it to the
// end. Labels are purely client-side; the file host never sees them.
type Manager struct {
	mu     sync.Mutex
	byOp   map[int64][]*domain.Folder
	store  Store // nil when running memory-only
	logger logger.Logger
}

func NewManager(store Store, log logger.Logger) *Manager {
	return &Manager{
		byOp:   make(map[int64][]*domain.Folder),
		store:  store,
		logger: log,
	}
}

// Create adds a folder for operator and makes it current.
func (m *Manager) Create(ctx context.Context, operator int64, name string) (*domain.Folder, error) {
	m.mu.Lock()
	for _, f := range m.byOp[operator] {
		if f.Name == name {
			m.mu.Unlock()
			return nil, ErrExists
		}
	}
	folder := &domain.Folder{
		Name:      name,
		CreatedAt: time.Now(),
	}
	m.byOp[operator] = append(m.byOp[operator], folder)
	snapshot := m.snapshotLocked(operator)
	m.mu.Unlock()

	m.persist(ctx, operator, snapshot)
	return folder, nil
}

// List returns operator's folders in creation/selection order.
func (m *Manager) List(operator int64) []*domain.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked(operator)
}

// SetCurrent marks name as operator's current folder by moving it to the
// end of the list.
func (m *Manager) SetCurrent(ctx context.Context, operator int64, name string) error {
	m.mu.Lock()
	list := m.byOp[operator]
	idx := -1
	for i, f := range list {
		if f.Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		m.mu.Unlock()
		return ErrNotFound
	}
	folder := list[idx]
	list = append(list[:idx], list[idx+1:]...)
	m.byOp[operator] = append(list, folder)
	snapshot := m.snapshotLocked(operator)
	m.mu.Unlock()

	m.persist(ctx, operator, snapshot)
	return nil
}

// Current returns operator's current folder, nil when none is set.
func (m *Manager) Current(operator int64) *domain.Folder {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.byOp[operator]
	if len(list) == 0 {
		return nil
	}
	return list[len(list)-1]
}

// RecordUpload bumps the file count of operator's current folder and
// returns its name as the display label, "" when no folder is set.
func (m *Manager) RecordUpload(ctx context.Context, operator int64) string {
	m.mu.Lock()
	list := m.byOp[operator]
	if len(list) == 0 {
		m.mu.Unlock()
		return ""
	}
	current := list[len(list)-1]
	current.FileCount++
	name := current.Name
	snapshot := m.snapshotLocked(operator)
	m.mu.Unlock()

	m.persist(ctx, operator, snapshot)
	return name
}

// Seed replaces all folder state without touching the store. Used by the
// startup sync.
func (m *Manager) Seed(all map[int64][]*domain.Folder) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byOp = make(map[int64][]*domain.Folder, len(all))
	for op, list := range all {
		m.byOp[op] = append([]*domain.Folder(nil), list...)
	}
}

func (m *Manager) snapshotLocked(operator int64) []*domain.Folder {
	return append([]*domain.Folder(nil), m.byOp[operator]...)
}

func (m *Manager) persist(ctx context.Context, operator int64, snapshot []*domain.Folder) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveFolders(ctx, operator, snapshot); err != nil {
		m.logger.Warn("failed to persist folders",
			logger.Int64("operator_id", operator),
			logger.Error(err))
	}
}
