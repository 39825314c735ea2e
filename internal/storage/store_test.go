package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// storeContract exercises the behavior every Store backend must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "workouts"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "workouts", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "workouts", `[{"id":"2"}]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := s.Get(ctx, "workouts")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != `[{"id":"2"}]` {
		t.Errorf("Get = %q, want the overwritten value", got)
	}

	if err := s.Delete(ctx, "workouts"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "workouts"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
}

// TestMemoryStore verifies the in-memory backend against the store contract.
func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(0))
}

// TestMemoryStoreQuota verifies oversized writes fail and leave the old value.
func TestMemoryStoreQuota(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(8)
	if err := s.Set(ctx, "k", "small"); err != nil {
		t.Fatal(err)
	}
	err := s.Set(ctx, "k", strings.Repeat("x", 9))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
	if got, _ := s.Get(ctx, "k"); got != "small" {
		t.Errorf("value = %q, want unchanged %q", got, "small")
	}
}

// TestSQLiteStore verifies the SQLite backend against the store contract and
// that values survive reopening the file.
func TestSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenSQLite(dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	storeContract(t, s)

	ctx := context.Background()
	if err := s.Set(ctx, "workouts", "[]"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLite(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if got, err := reopened.Get(ctx, "workouts"); err != nil || got != "[]" {
		t.Errorf("after reopen Get = %q, %v", got, err)
	}
}

// TestOpenUnknownDriver verifies a clear error for unsupported drivers.
func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "redis"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

// TestOpenMemory verifies the memory driver needs no further options.
func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), Options{Driver: DriverMemory})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T, want *MemoryStore", s)
	}
}
