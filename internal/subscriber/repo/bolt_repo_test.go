package repo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/timshannon/bolthold"

	"github.com/ovaphlow/pitchfork/service-subscriber/internal/subscriber/entity"
)

func setupTestStore(t *testing.T) *bolthold.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "subscribers.db")
	store, err := bolthold.Open(path, 0o600, nil)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(path)
	})
	return store
}

func TestBoltRepo_CreateAndGet(t *testing.T) {
	r := NewBoltRepo(setupTestStore(t))
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s := &entity.Subscriber{ID: "100", Name: "Ada", SubscribedToChannel: "gophers", SubscribeDate: now}
	if err := r.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := r.GetByID(ctx, "100")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ID != "100" || got.Name != "Ada" || got.SubscribedToChannel != "gophers" {
		t.Errorf("GetByID() = %+v", got)
	}
	if !got.SubscribeDate.Equal(now) {
		t.Errorf("SubscribeDate = %v, want %v", got.SubscribeDate, now)
	}
}

func TestBoltRepo_CreateDuplicate(t *testing.T) {
	r := NewBoltRepo(setupTestStore(t))
	ctx := context.Background()

	s := &entity.Subscriber{ID: "1", Name: "a", SubscribedToChannel: "b"}
	if err := r.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := r.Create(ctx, s); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("second Create() error = %v, want ErrDuplicateID", err)
	}
}

func TestBoltRepo_NotFound(t *testing.T) {
	r := NewBoltRepo(setupTestStore(t))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"get", func() error { _, err := r.GetByID(ctx, "missing"); return err }},
		{"update", func() error { return r.Update(ctx, &entity.Subscriber{ID: "missing", Name: "x", SubscribedToChannel: "y"}) }},
		{"delete", func() error { return r.Delete(ctx, "missing") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrNotFound) {
				t.Errorf("error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestBoltRepo_UpdateAndDelete(t *testing.T) {
	r := NewBoltRepo(setupTestStore(t))
	ctx := context.Background()

	s := &entity.Subscriber{ID: "7", Name: "Grace", SubscribedToChannel: "cobol"}
	if err := r.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	s.SubscribedToChannel = "go"
	if err := r.Update(ctx, s); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, err := r.GetByID(ctx, "7")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.SubscribedToChannel != "go" || got.Name != "Grace" {
		t.Errorf("after update = %+v", got)
	}

	if err := r.Delete(ctx, "7"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := r.GetByID(ctx, "7"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestBoltRepo_ListOrdered(t *testing.T) {
	r := NewBoltRepo(setupTestStore(t))
	ctx := context.Background()

	list, err := r.List(ctx)
	if err != nil {
		t.Fatalf("List() on empty store error = %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("List() on empty store = %d items", len(list))
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		s := &entity.Subscriber{ID: id, Name: id, SubscribedToChannel: "ch", SubscribeDate: base.Add(time.Duration(2-i) * time.Hour)}
		if err := r.Create(ctx, s); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}

	list, err = r.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"b", "a", "c"}
	if len(list) != len(want) {
		t.Fatalf("List() = %d items, want %d", len(list), len(want))
	}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("List()[%d].ID = %q, want %q", i, list[i].ID, id)
		}
	}
}

func TestBoltRepo_CanceledContext(t *testing.T) {
	r := NewBoltRepo(setupTestStore(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("List() error = %v, want context.Canceled", err)
	}
}
