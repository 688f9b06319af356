package memory

import (
	"context"
	"errors"
	"math"
	"testing"

	"reasonmed-be/pkg/apperrors"
)

func seedStore(t *testing.T, s *Store) {
	t.Helper()
	err := s.Upsert(context.Background(),
		[]string{"case_0", "case_1", "case_2"},
		[]string{"cardio case", "neuro case", "renal case"},
		[]map[string]interface{}{
			{"medical_keywords": "cardiology"},
			{"medical_keywords": "neurology"},
			{"medical_keywords": "cardiology"},
		},
		[][]float32{
			{1, 0, 0},
			{0, 1, 0},
			{0.9, 0.1, 0},
		},
	)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
}

func TestSearchOrdering(t *testing.T) {
	s := NewStore()
	seedStore(t, s)

	res, err := s.Search(context.Background(), []float32{1, 0, 0}, 3, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	wantIDs := []string{"case_0", "case_2", "case_1"}
	if len(res.IDs) != 3 {
		t.Fatalf("Search() returned %d hits, want 3", len(res.IDs))
	}
	for i := range wantIDs {
		if res.IDs[i] != wantIDs[i] {
			t.Errorf("res.IDs = %v, want %v", res.IDs, wantIDs)
			break
		}
	}
	for i := 1; i < len(res.Distances); i++ {
		if res.Distances[i-1] > res.Distances[i] {
			t.Errorf("distances not ascending: %v", res.Distances)
		}
	}
}

func TestSearchHonorsKAndFilter(t *testing.T) {
	s := NewStore()
	seedStore(t, s)
	ctx := context.Background()

	res, err := s.Search(ctx, []float32{1, 0, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(res.IDs) != 1 || res.IDs[0] != "case_0" {
		t.Errorf("Search(k=1) = %v, want [case_0]", res.IDs)
	}

	// fewer matches than k is a shorter result, not an error
	res, err = s.Search(ctx, []float32{1, 0, 0}, 10, map[string]string{"medical_keywords": "neurology"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(res.IDs) != 1 || res.IDs[0] != "case_1" {
		t.Errorf("filtered Search() = %v, want [case_1]", res.IDs)
	}

	res, err = s.Search(ctx, []float32{1, 0, 0}, 10, map[string]string{"medical_keywords": "oncology"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(res.IDs) != 0 {
		t.Errorf("Search() with unmatched filter = %v, want empty", res.IDs)
	}
}

func TestSearchRoundTripDistance(t *testing.T) {
	s := NewStore()
	seedStore(t, s)

	res, err := s.Search(context.Background(), []float32{0, 1, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res.IDs[0] != "case_1" {
		t.Fatalf("nearest = %s, want case_1", res.IDs[0])
	}
	if math.Abs(res.Distances[0]) > 1e-6 {
		t.Errorf("identical vector distance = %v, want ~0", res.Distances[0])
	}
}

func TestUpsertOverwritesById(t *testing.T) {
	s := NewStore()
	seedStore(t, s)
	ctx := context.Background()

	err := s.Upsert(ctx,
		[]string{"case_0"},
		[]string{"updated cardio case"},
		[]map[string]interface{}{{"medical_keywords": "cardiology"}},
		[][]float32{{1, 0, 0}},
	)
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() after overwrite = %d, want 3", count)
	}

	res, err := s.Search(ctx, []float32{1, 0, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if res.Documents[0] != "updated cardio case" {
		t.Errorf("document after overwrite = %q", res.Documents[0])
	}
}

func TestUpsertValidatesLengths(t *testing.T) {
	s := NewStore()

	err := s.Upsert(context.Background(),
		[]string{"a", "b"},
		[]string{"only one"},
		[]map[string]interface{}{{}, {}},
		[][]float32{{1}, {1}},
	)
	var vErr *apperrors.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("Upsert() error = %v, want ValidationError", err)
	}
}

func TestReset(t *testing.T) {
	s := NewStore()
	seedStore(t, s)
	ctx := context.Background()

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() after Reset = %d, want 0", count)
	}
}
