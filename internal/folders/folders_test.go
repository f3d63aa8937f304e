package folders

import (
	"context"
	"errors"
	"testing"

	"github.com/isotoolkit/keeper/internal/logger"
)

func newTestManager() *Manager {
	return NewManager(nil, logger.New("error", false))
}

func TestManager_CreateAndList(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	if _, err := m.Create(ctx, 1, "Windows ISOs"); err != nil {
		t.Fatalf("Create() = %v, want nil", err)
	}
	if _, err := m.Create(ctx, 1, "Linux ISOs"); err != nil {
		t.Fatalf("Create() = %v, want nil", err)
	}

	list := m.List(1)
	if len(list) != 2 {
		t.Fatalf("List() returned %d folders, want 2", len(list))
	}
	if list[0].Name != "Windows ISOs" || list[1].Name != "Linux ISOs" {
		t.Errorf("List() order = [%s, %s], want creation order", list[0].Name, list[1].Name)
	}
}

func TestManager_CreateDuplicate(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	if _, err := m.Create(ctx, 1, "isos"); err != nil {
		t.Fatalf("Create() = %v, want nil", err)
	}
	if _, err := m.Create(ctx, 1, "isos"); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Create() = %v, want ErrExists", err)
	}
}

func TestManager_CurrentIsLastSelected(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	if m.Current(1) != nil {
		t.Error("Current() != nil with no folders")
	}

	_, _ = m.Create(ctx, 1, "a")
	_, _ = m.Create(ctx, 1, "b")
	if got := m.Current(1); got == nil || got.Name != "b" {
		t.Errorf("Current() = %v, want most recently created folder b", got)
	}

	if err := m.SetCurrent(ctx, 1, "a"); err != nil {
		t.Fatalf("SetCurrent() = %v, want nil", err)
	}
	if got := m.Current(1); got == nil || got.Name != "a" {
		t.Errorf("Current() = %v after SetCurrent(a), want a", got)
	}

	if err := m.SetCurrent(ctx, 1, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetCurrent(missing) = %v, want ErrNotFound", err)
	}
}

func TestManager_OperatorsAreIsolated(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, _ = m.Create(ctx, 1, "mine")
	if got := m.List(2); len(got) != 0 {
		t.Errorf("List(2) returned %d folders, want 0", len(got))
	}
}

func TestManager_RecordUpload(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	if label := m.RecordUpload(ctx, 1); label != "" {
		t.Errorf("RecordUpload() = %q with no folder, want empty", label)
	}

	_, _ = m.Create(ctx, 1, "isos")
	if label := m.RecordUpload(ctx, 1); label != "isos" {
		t.Errorf("RecordUpload() = %q, want isos", label)
	}
	if got := m.Current(1); got.FileCount != 1 {
		t.Errorf("FileCount = %d after RecordUpload, want 1", got.FileCount)
	}
}
