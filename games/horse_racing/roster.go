package horse_racing

import "strings"

// Roster is the ordered list of entered horses. Its unused-type pool is the
// catalog minus the types already assigned, so a catalog that finishes
// loading after the roster exists is picked up without any reset.
type Roster struct {
	catalog *Catalog
	horses  []*Horse
}

func NewRoster(catalog *Catalog) *Roster {
	return &Roster{catalog: catalog}
}

// Available lists catalog types not yet assigned, in catalog order.
func (r *Roster) Available() []HorseType {
	used := make(map[string]struct{}, len(r.horses))
	for _, h := range r.horses {
		used[h.Type.TypeName] = struct{}{}
	}
	all := r.catalog.Types()
	out := make([]HorseType, 0, len(all))
	for _, t := range all {
		if _, taken := used[t.TypeName]; !taken {
			out = append(out, t)
		}
	}
	return out
}

// Add enters a horse under a uniformly random unused type.
func (r *Roster) Add(name string, rng Random) (*Horse, error) {
	if len(r.horses) >= MaxHorses {
		return nil, ErrRosterFull
	}
	pool := r.Available()
	if len(pool) == 0 {
		return nil, ErrNoTypesAvailable
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if r.Find(name) != nil {
		return nil, ErrDuplicateName
	}
	h := &Horse{Name: name, Type: pool[rng.Intn(len(pool))]}
	r.horses = append(r.horses, h)
	return h, nil
}

func (r *Roster) Find(name string) *Horse {
	for _, h := range r.horses {
		if h.Name == name {
			return h
		}
	}
	return nil
}

// At returns the horse at index or nil when out of range.
func (r *Roster) At(index int) *Horse {
	if index < 0 || index >= len(r.horses) {
		return nil
	}
	return r.horses[index]
}

func (r *Roster) Horses() []*Horse { return r.horses }

func (r *Roster) Len() int { return len(r.horses) }

func (r *Roster) Clear() { r.horses = nil }
