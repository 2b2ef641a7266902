package store

import (
	"path/filepath"
	"testing"

	"stt-cli/internal/model"
)

func TestExportSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "out", "items.db")
	items := []model.Item{
		model.Interval("plan", ts(2024, 5, 6, 9, 0, 0), ts(2024, 5, 6, 9, 30, 0)),
		model.Interval("notes\nsecond line", ts(2024, 5, 6, 9, 30, 0), ts(2024, 5, 6, 10, 0, 0)),
		model.Ongoing("coding", ts(2024, 5, 6, 10, 0, 0)),
	}

	n, err := ExportSQLite(ctx, path, items)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != len(items) {
		t.Fatalf("expected %d exported, got %d", len(items), n)
	}
	got, err := ReadSQLite(ctx, path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %v", len(items), got)
	}
	for i := range items {
		if !got[i].Equal(items[i]) {
			t.Fatalf("item %d: got %v, want %v", i, got[i], items[i])
		}
	}

	// Exports replace the table contents.
	if _, err := ExportSQLite(ctx, path, items); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	got, err = ReadSQLite(ctx, path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("expected %d items after re-export, got %d", len(items), len(got))
	}
	if _, err := ExportSQLite(ctx, path, items[:1]); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	got, err = ReadSQLite(ctx, path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || !got[0].Equal(items[0]) {
		t.Fatalf("expected only the re-exported item, got %v", got)
	}
}

func TestExportSQLiteEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.db")
	if _, err := ExportSQLite(t.Context(), path, nil); err != nil {
		t.Fatalf("export: %v", err)
	}
	got, err := ReadSQLite(t.Context(), path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}

	if _, err := ExportSQLite(t.Context(), "", nil); err == nil {
		t.Fatalf("expected error for missing path")
	}
	if _, err := ReadSQLite(t.Context(), filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Fatalf("expected error for missing database")
	}
}
