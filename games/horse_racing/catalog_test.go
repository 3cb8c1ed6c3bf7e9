package horse_racing

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const catalogJSON = `[
  {"TypeName": "Thoroughbred", "speed": 0.2},
  {"TypeName": "Quarter Horse", "speedPattern": [0.3, 0.12]},
  {"TypeName": "Mustang", "speedRange": [0.08, 0.3]},
  {"TypeName": "Donkey", "pauseChance": 0.3},
  {"TypeName": "Rocking Horse"},
  {"TypeName": ""},
  {"TypeName": "Thoroughbred", "speed": 9}
]`

const catalogYAML = `
- TypeName: Thoroughbred
  speed: 0.2
- TypeName: Quarter Horse
  speedPattern: [0.3, 0.12]
- TypeName: Donkey
  pauseChance: 0.3
`

func TestParseCatalogJSON(t *testing.T) {
	types, err := ParseCatalog([]byte(catalogJSON), "json")
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 5 {
		t.Fatalf("Expected 5 types after dropping unnamed and duplicate, got %d", len(types))
	}

	want := []MovementBehavior{
		ConstantSpeed{Speed: 0.2},
		TwoPhaseSpeed{Early: 0.3, Late: 0.12},
		RangeSpeed{Lo: 0.08, Hi: 0.3},
		PauseChance{P: 0.3},
		ConstantSpeed{Speed: DefaultSpeed},
	}
	for i, w := range want {
		if types[i].Behavior != w {
			t.Errorf("type %d (%s): expected %#v, got %#v", i, types[i].TypeName, w, types[i].Behavior)
		}
	}
}

func TestParseCatalogYAML(t *testing.T) {
	types, err := ParseCatalog([]byte(catalogYAML), "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 3 {
		t.Fatalf("Expected 3 types, got %d", len(types))
	}
	if types[1].Behavior != (TwoPhaseSpeed{Early: 0.3, Late: 0.12}) {
		t.Errorf("Unexpected behavior %#v", types[1].Behavior)
	}
}

func TestParseCatalogErrors(t *testing.T) {
	if _, err := ParseCatalog([]byte("{not json"), "json"); err == nil {
		t.Error("Expected error for malformed json")
	}
	if _, err := ParseCatalog([]byte("[]"), "toml"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestDescriptorPrecedence(t *testing.T) {
	d := Descriptor{TypeName: "Mixed", Speed: 0.4, SpeedRange: []float64{0.1, 0.2}, PauseChance: 0.5}
	if d.Behavior() != (ConstantSpeed{Speed: 0.4}) {
		t.Errorf("Expected speed to win, got %#v", d.Behavior())
	}
	d.Speed = 0
	if d.Behavior() != (RangeSpeed{Lo: 0.1, Hi: 0.2}) {
		t.Errorf("Expected range to win over pause, got %#v", d.Behavior())
	}
}

func TestBuildTypesSkipsStalledHorses(t *testing.T) {
	descs := []Descriptor{
		{TypeName: "Backwards", Speed: -0.2},
		{TypeName: "Sleeper", SpeedPattern: []float64{0.3, 0}},
		{TypeName: "Statue", SpeedRange: []float64{0, 0}},
		{TypeName: "Inverted", SpeedRange: []float64{0.3, 0.1}},
		{TypeName: "Mule", PauseChance: 1},
		{TypeName: "Pegasus", SpeedRange: []float64{0, 0.45}},
		{TypeName: "Backwards", Speed: 0.2},
	}
	types := BuildTypes(descs)
	if len(types) != 2 {
		t.Fatalf("Expected 2 types to survive, got %d: %+v", len(types), types)
	}
	if types[0].TypeName != "Pegasus" || types[1].TypeName != "Backwards" {
		t.Errorf("Unexpected survivors %+v", types)
	}
	// A rejected record does not reserve its name
	if types[1].Behavior != (ConstantSpeed{Speed: 0.2}) {
		t.Errorf("Expected the valid Backwards record, got %#v", types[1].Behavior)
	}
}

func TestCheckBehavior(t *testing.T) {
	tests := []struct {
		b  MovementBehavior
		ok bool
	}{
		{ConstantSpeed{Speed: 0.2}, true},
		{ConstantSpeed{Speed: 0}, false},
		{ConstantSpeed{Speed: math.Inf(1)}, false},
		{TwoPhaseSpeed{Early: -1, Late: 0.1}, false},
		{RangeSpeed{Lo: -0.1, Hi: 0.2}, false},
		{RangeSpeed{Lo: 0.2, Hi: 0.2}, true},
		{PauseChance{P: 0.99}, true},
		{PauseChance{P: math.NaN()}, false},
	}
	for _, tt := range tests {
		if err := checkBehavior(tt.b); (err == nil) != tt.ok {
			t.Errorf("checkBehavior(%#v): expected ok=%v, got %v", tt.b, tt.ok, err)
		}
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	for _, b := range []MovementBehavior{
		ConstantSpeed{Speed: 0.2},
		TwoPhaseSpeed{Early: 0.3, Late: 0.1},
		RangeSpeed{Lo: 0.1, Hi: 0.3},
		PauseChance{P: 0.2},
	} {
		d := DescriptorFor(HorseType{TypeName: "X", Behavior: b})
		if d.Behavior() != b {
			t.Errorf("Expected %#v back, got %#v", b, d.Behavior())
		}
	}
}

func TestLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "horses.yml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	types, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(types) != 3 {
		t.Errorf("Expected 3 types, got %d", len(types))
	}
	if _, err := LoadCatalogFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadCatalogWithoutDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "horses.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	cat := NewCatalog()
	LoadCatalog(context.Background(), cat, nil, path)
	if cat.Len() != 5 {
		t.Errorf("Expected 5 types loaded, got %d", cat.Len())
	}

	// A failed load leaves the catalog as it was
	empty := NewCatalog()
	LoadCatalog(context.Background(), empty, nil, filepath.Join(t.TempDir(), "nope.json"))
	if empty.Len() != 0 {
		t.Errorf("Expected empty catalog after failed load, got %d", empty.Len())
	}
}

func TestShippedCatalog(t *testing.T) {
	types, err := LoadCatalogFile(filepath.Join("..", "..", "horses.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(types) < MaxHorses {
		t.Errorf("Expected at least %d types for a full roster, got %d", MaxHorses, len(types))
	}
}

func TestCatalogTypesIsCopy(t *testing.T) {
	cat := testCatalog(2)
	types := cat.Types()
	types[0].TypeName = "Changed"
	if cat.Types()[0].TypeName != "Type0" {
		t.Error("Expected catalog to be unaffected by edits to Types()")
	}
}
