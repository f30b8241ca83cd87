package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	fs := NewFileStore(path)
	ctx := context.Background()

	if _, ok, err := fs.LoadSession(ctx); err != nil || ok {
		t.Fatalf("fresh store: ok=%v err=%v", ok, err)
	}

	rec := SessionRecord{Phase: models.PhaseSearching, OrderID: "r1"}
	if err := fs.SaveSession(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := fs.SaveToken(ctx, "tok"); err != nil {
		t.Fatalf("save token: %v", err)
	}

	// Reopen to prove durability.
	fs2 := NewFileStore(path)
	got, ok, err := fs2.LoadSession(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if got != rec {
		t.Fatalf("got %+v, want %+v", got, rec)
	}
	tok, err := fs2.LoadToken(ctx)
	if err != nil || tok != "tok" {
		t.Fatalf("token: %q err=%v", tok, err)
	}

	// Clearing the session must not evict the token.
	if err := fs2.ClearSession(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := fs2.LoadSession(ctx); ok {
		t.Fatal("session survived clear")
	}
	if tok, _ := fs2.LoadToken(ctx); tok != "tok" {
		t.Fatal("token lost on session clear")
	}
}

func TestFileStoreCorruptFileBehavesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileStore(path)
	if _, ok, err := fs.LoadSession(context.Background()); err != nil || ok {
		t.Fatalf("corrupt file: ok=%v err=%v", ok, err)
	}
}
