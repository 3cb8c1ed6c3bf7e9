package horse_racing

import (
	"errors"
	"fmt"
	"testing"
)

func testCatalog(n int) *Catalog {
	types := make([]HorseType, n)
	for i := range types {
		types[i] = HorseType{TypeName: fmt.Sprintf("Type%d", i), Behavior: ConstantSpeed{Speed: 0.1 * float64(i+1)}}
	}
	return NewCatalog(types...)
}

func TestRosterAddAssignsUniqueTypes(t *testing.T) {
	r := NewRoster(testCatalog(3))
	rng := &stubRandom{ints: []int{1, 0, 0}}

	seen := map[string]bool{}
	for _, name := range []string{"Comet", "Blaze", "Storm"} {
		h, err := r.Add(name, rng)
		if err != nil {
			t.Fatalf("Add(%q) failed: %v", name, err)
		}
		if seen[h.Type.TypeName] {
			t.Errorf("Type %s assigned twice", h.Type.TypeName)
		}
		seen[h.Type.TypeName] = true
	}
	if got := len(r.Available()); got != 0 {
		t.Errorf("Expected empty pool, got %d", got)
	}

	if _, err := r.Add("Dusty", rng); !errors.Is(err, ErrNoTypesAvailable) {
		t.Errorf("Expected ErrNoTypesAvailable, got %v", err)
	}
	if r.Len() != 3 {
		t.Errorf("Expected roster unchanged at 3, got %d", r.Len())
	}
}

func TestRosterAddPicksFromPool(t *testing.T) {
	r := NewRoster(testCatalog(4))
	h, err := r.Add("Comet", &stubRandom{ints: []int{2}})
	if err != nil {
		t.Fatal(err)
	}
	if h.Type.TypeName != "Type2" {
		t.Errorf("Expected Type2, got %s", h.Type.TypeName)
	}
	// Type2 is gone, so index 2 of the remaining pool is Type3
	h, err = r.Add("Blaze", &stubRandom{ints: []int{2}})
	if err != nil {
		t.Fatal(err)
	}
	if h.Type.TypeName != "Type3" {
		t.Errorf("Expected Type3, got %s", h.Type.TypeName)
	}
}

func TestRosterAddTrimsName(t *testing.T) {
	r := NewRoster(testCatalog(2))
	h, err := r.Add("  Comet  ", &stubRandom{})
	if err != nil {
		t.Fatal(err)
	}
	if h.Name != "Comet" {
		t.Errorf("Expected trimmed name, got %q", h.Name)
	}
	if r.Find("Comet") == nil {
		t.Error("Expected Find to locate trimmed name")
	}
}

func TestRosterAddRejections(t *testing.T) {
	r := NewRoster(testCatalog(3))
	if _, err := r.Add("   ", &stubRandom{}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
	if _, err := r.Add("Comet", &stubRandom{}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Add("Comet", &stubRandom{}); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Expected ErrDuplicateName, got %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 horse, got %d", r.Len())
	}
}

func TestRosterFull(t *testing.T) {
	r := NewRoster(testCatalog(10))
	for i := 0; i < MaxHorses; i++ {
		if _, err := r.Add(fmt.Sprintf("H%d", i), &stubRandom{}); err != nil {
			t.Fatalf("Add %d failed: %v", i, err)
		}
	}
	if _, err := r.Add("Ninth", &stubRandom{}); !errors.Is(err, ErrRosterFull) {
		t.Errorf("Expected ErrRosterFull, got %v", err)
	}
	// Full is checked before the pool
	if len(r.Available()) != 2 {
		t.Errorf("Expected 2 unused types, got %d", len(r.Available()))
	}
}

func TestRosterEmptyCatalog(t *testing.T) {
	cat := NewCatalog()
	r := NewRoster(cat)
	if _, err := r.Add("Comet", &stubRandom{}); !errors.Is(err, ErrNoTypesAvailable) {
		t.Errorf("Expected ErrNoTypesAvailable, got %v", err)
	}

	// A catalog loaded later is picked up by the existing roster
	cat.Set(testCatalog(1).Types())
	if _, err := r.Add("Comet", &stubRandom{}); err != nil {
		t.Errorf("Expected add after catalog load, got %v", err)
	}
}

func TestRosterAt(t *testing.T) {
	r := NewRoster(testCatalog(2))
	_, _ = r.Add("Comet", &stubRandom{})
	if r.At(0) == nil || r.At(0).Name != "Comet" {
		t.Error("Expected Comet at 0")
	}
	if r.At(-1) != nil || r.At(1) != nil {
		t.Error("Expected nil outside range")
	}
	r.Clear()
	if r.Len() != 0 || len(r.Available()) != 2 {
		t.Error("Expected clear to empty roster and restore pool")
	}
}
