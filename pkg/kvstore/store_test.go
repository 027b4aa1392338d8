package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// storeFactories lists every implementation so the contract tests run against each.
func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory() },
		"sqlite": func(t *testing.T) Store {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "sub", "profile.db"))
			if err != nil {
				t.Fatalf("OpenSQLite failed: %v", err)
			}
			return s
		},
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()

			if _, ok, err := s.Get(ctx, "@inputValue"); err != nil || ok {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}

			if err := s.Set(ctx, "@inputValue", "hello"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set(ctx, "@inputValue", "hello, world"); err != nil {
				t.Fatalf("second Set failed: %v", err)
			}

			v, ok, err := s.Get(ctx, "@inputValue")
			if err != nil || !ok {
				t.Fatalf("expected stored value, got ok=%v err=%v", ok, err)
			}
			if v != "hello, world" {
				t.Errorf("expected last write to win, got %q", v)
			}

			// Empty string is a value, not absence.
			if err := s.Set(ctx, "@inputValue", ""); err != nil {
				t.Fatal(err)
			}
			v, ok, _ = s.Get(ctx, "@inputValue")
			if !ok || v != "" {
				t.Errorf("expected empty stored value, got %q ok=%v", v, ok)
			}
		})
	}
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			if err := s.Close(); err != nil {
				t.Fatal(err)
			}
			if err := s.Close(); err != nil {
				t.Errorf("second Close should be a no-op, got %v", err)
			}
			if err := s.Set(ctx, "k", "v"); !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed from Set, got %v", err)
			}
			if _, _, err := s.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed from Get, got %v", err)
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	text := "Ąžuolas " + strings.Repeat("x", 50)
	if err := s.Set(ctx, "@inputValue", text); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "@inputValue")
	if err != nil || !ok {
		t.Fatalf("expected value after reopen, ok=%v err=%v", ok, err)
	}
	if v != text {
		t.Errorf("expected %q, got %q", text, v)
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := map[string]string{
		"/tmp/profile.db":         "file:/tmp/profile.db?_pragma=busy_timeout(5000)",
		"data/profile.db":         "file:data/profile.db?_pragma=busy_timeout(5000)",
		"/tmp/a?b/profile.db":     "file:/tmp/a%3Fb/profile.db?_pragma=busy_timeout(5000)",
		"/tmp/a#b/profile.db":     "file:/tmp/a%23b/profile.db?_pragma=busy_timeout(5000)",
		"/tmp/100%/profile.db":    "file:/tmp/100%25/profile.db?_pragma=busy_timeout(5000)",
		"/tmp/my docs/profile.db": "file:/tmp/my%20docs/profile.db?_pragma=busy_timeout(5000)",
	}
	for path, want := range tests {
		if got := sqliteDSN(path); got != want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestSQLiteOddDirectoryName(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "we?ird#dir%20 x")
	path := filepath.Join(dir, "profile.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "@inputValue", "kept"); err != nil {
		t.Fatal(err)
	}
	s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database not created at %q: %v", path, err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	v, ok, err := reopened.Get(ctx, "@inputValue")
	if err != nil || !ok || v != "kept" {
		t.Errorf("after reopen got %q ok=%v err=%v", v, ok, err)
	}
}

func TestMemoryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory()
	if err := m.Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
