package horse_racing

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"hrc-derby/utils"

	"gopkg.in/yaml.v3"
)

// Descriptor is one record of the catalog resource. Exactly one behavior field
// is expected; when several are present the first in the order speed,
// speedPattern, speedRange, pauseChance wins.
type Descriptor struct {
	TypeName     string    `json:"TypeName" yaml:"TypeName"`
	Speed        float64   `json:"speed,omitempty" yaml:"speed,omitempty"`
	SpeedPattern []float64 `json:"speedPattern,omitempty" yaml:"speedPattern,omitempty"`
	SpeedRange   []float64 `json:"speedRange,omitempty" yaml:"speedRange,omitempty"`
	PauseChance  float64   `json:"pauseChance,omitempty" yaml:"pauseChance,omitempty"`
}

// Behavior resolves the descriptor to a movement behavior. Zero values count
// as absent. A descriptor with no usable field moves at DefaultSpeed.
func (d Descriptor) Behavior() MovementBehavior {
	switch {
	case d.Speed != 0:
		return ConstantSpeed{Speed: d.Speed}
	case len(d.SpeedPattern) >= 2:
		return TwoPhaseSpeed{Early: d.SpeedPattern[0], Late: d.SpeedPattern[1]}
	case len(d.SpeedRange) >= 2:
		return RangeSpeed{Lo: d.SpeedRange[0], Hi: d.SpeedRange[1]}
	case d.PauseChance != 0:
		return PauseChance{P: d.PauseChance}
	default:
		return ConstantSpeed{Speed: DefaultSpeed}
	}
}

// checkBehavior reports why a behavior could leave a horse short of the
// finish line forever. Every frame must be able to move it forward.
func checkBehavior(b MovementBehavior) error {
	switch v := b.(type) {
	case ConstantSpeed:
		if !positive(v.Speed) {
			return fmt.Errorf("speed %v must be positive", v.Speed)
		}
	case TwoPhaseSpeed:
		if !positive(v.Early) || !positive(v.Late) {
			return fmt.Errorf("speedPattern [%v, %v] must be positive", v.Early, v.Late)
		}
	case RangeSpeed:
		if !finite(v.Lo) || v.Lo < 0 || !positive(v.Hi) || v.Lo > v.Hi {
			return fmt.Errorf("speedRange [%v, %v] must satisfy 0 <= lo <= hi, hi > 0", v.Lo, v.Hi)
		}
	case PauseChance:
		if !finite(v.P) || v.P < 0 || v.P >= 1 {
			return fmt.Errorf("pauseChance %v must be in [0, 1)", v.P)
		}
	}
	return nil
}

func finite(f float64) bool   { return !math.IsNaN(f) && !math.IsInf(f, 0) }
func positive(f float64) bool { return finite(f) && f > 0 }

// DescriptorFor is the inverse of Behavior, used when seeding storage.
func DescriptorFor(t HorseType) Descriptor {
	d := Descriptor{TypeName: t.TypeName}
	switch b := t.Behavior.(type) {
	case ConstantSpeed:
		d.Speed = b.Speed
	case TwoPhaseSpeed:
		d.SpeedPattern = []float64{b.Early, b.Late}
	case RangeSpeed:
		d.SpeedRange = []float64{b.Lo, b.Hi}
	case PauseChance:
		d.PauseChance = b.P
	}
	return d
}

// BuildTypes converts descriptors to horse types, dropping unnamed and
// duplicate entries and those whose behavior could never reach the finish.
func BuildTypes(descs []Descriptor) []HorseType {
	seen := make(map[string]struct{}, len(descs))
	types := make([]HorseType, 0, len(descs))
	for i, d := range descs {
		name := strings.TrimSpace(d.TypeName)
		if name == "" {
			utils.BotLogf("CATALOG", "skipping record %d: missing TypeName", i)
			continue
		}
		if _, dup := seen[name]; dup {
			utils.BotLogf("CATALOG", "skipping record %d: duplicate TypeName %q", i, name)
			continue
		}
		b := d.Behavior()
		if err := checkBehavior(b); err != nil {
			utils.BotLogf("CATALOG", "skipping record %d (%s): %v", i, name, err)
			continue
		}
		seen[name] = struct{}{}
		types = append(types, HorseType{TypeName: name, Behavior: b})
	}
	return types
}

// ParseCatalog decodes a catalog document. format is "json" or "yaml".
func ParseCatalog(data []byte, format string) ([]HorseType, error) {
	var descs []Descriptor
	switch format {
	case "json":
		if err := json.Unmarshal(data, &descs); err != nil {
			return nil, fmt.Errorf("parse catalog json: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &descs); err != nil {
			return nil, fmt.Errorf("parse catalog yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", format)
	}
	return BuildTypes(descs), nil
}

// LoadCatalogFile reads a catalog file, picking the decoder from its extension.
func LoadCatalogFile(path string) ([]HorseType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return ParseCatalog(data, format)
}

// Catalog holds the loaded horse types. It starts empty and is filled once
// loading completes; an empty catalog is a valid state.
type Catalog struct {
	mu    sync.RWMutex
	types []HorseType
}

func NewCatalog(types ...HorseType) *Catalog {
	c := &Catalog{}
	c.Set(types)
	return c
}

func (c *Catalog) Set(types []HorseType) {
	cp := append([]HorseType(nil), types...)
	c.mu.Lock()
	c.types = cp
	c.mu.Unlock()
}

// Types returns the catalog in load order.
func (c *Catalog) Types() []HorseType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]HorseType(nil), c.types...)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types)
}
