package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wahlnetz-service/internal/domain"
)

func TestDefaultDatasetIsValid(t *testing.T) {
	ds, err := Default()
	if err != nil {
		t.Fatalf("default dataset: %v", err)
	}
	if ds.ID != DefaultDatasetID {
		t.Fatalf("expected id %s, got %s", DefaultDatasetID, ds.ID)
	}
	if len(ds.Questions) != 14 {
		t.Fatalf("expected 14 questions, got %d", len(ds.Questions))
	}
	if len(ds.Parties) != 7 {
		t.Fatalf("expected 7 parties, got %d", len(ds.Parties))
	}
	if ds.Questions[13].ID != 13 || ds.Questions[13].Topic != "Klima-/Energiepolitik" {
		t.Fatalf("unexpected last question %+v", ds.Questions[13])
	}
	union, _ := ds.Party("Union")
	if union.Color != "#000000" {
		t.Fatalf("expected resolved Union color, got %q", union.Color)
	}
}

func TestLoaderReadsDirectory(t *testing.T) {
	dir := t.TempDir()
	content := `id: mini
questions:
  - topic: A
    question: "A?"
  - topic: B
    question: "B?"
parties:
  - name: X
    scores: [3, 7]
  - name: Y
    color: "#abcdef"
    scores: [9, 7]
`
	if err := os.WriteFile(filepath.Join(dir, "mini.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := NewDatasetLoader(dir)

	ds, err := loader.LoadDataset(context.Background(), "mini")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ds.Questions) != 2 || ds.Questions[1].ID != 1 || ds.Parties[1].Color != "#abcdef" {
		t.Fatalf("unexpected dataset %+v", ds)
	}
	if ds.Parties[0].Color != domain.FallbackColor {
		t.Fatalf("expected fallback color for X, got %s", ds.Parties[0].Color)
	}

	if _, err := loader.LoadDataset(context.Background(), DefaultDatasetID); err != nil {
		t.Fatalf("expected bundled dataset next to directory: %v", err)
	}
	if _, err := loader.LoadDataset(context.Background(), "../etc"); !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound for path-like id, got %v", err)
	}
}

func TestLoaderRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := `id: broken
questions:
  - topic: A
parties:
  - name: X
    scores: [3, 7]
`
	_ = os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(content), 0o644)
	_, err := NewDatasetLoader(dir).LoadDataset(context.Background(), "broken")
	if !errors.Is(err, domain.ErrInvalidDataset) {
		t.Fatalf("expected ErrInvalidDataset, got %v", err)
	}
}

func TestLoaderUnknownDataset(t *testing.T) {
	_, err := NewDatasetLoader("").LoadDataset(context.Background(), "nope")
	if !errors.Is(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound, got %v", err)
	}
}
