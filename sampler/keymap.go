package sampler

// KeyMapPolicy selects how regions are assigned to notes.
type KeyMapPolicy int

const (
	// PolicyExactRange lists, per note, every region whose key range contains
	// it; velocity ranges are checked at resolve time.
	PolicyExactRange KeyMapPolicy = iota
	// PolicyNearest maps each note to the single region whose root note is
	// closest, ignoring declared key and velocity ranges.
	PolicyNearest
)

func (p KeyMapPolicy) String() string {
	switch p {
	case PolicyExactRange:
		return "full"
	case PolicyNearest:
		return "simple"
	default:
		return "unknown"
	}
}

// KeyMap resolves (note, velocity) pairs to regions. It is immutable once built.
type KeyMap struct {
	policy  KeyMapPolicy
	regions []*SampleRegion
	notes   [128][]RegionID
}

// BuildKeyMap builds a map over regions, which must be in insertion order.
func BuildKeyMap(regions []*SampleRegion, policy KeyMapPolicy) *KeyMap {
	km := &KeyMap{policy: policy, regions: regions}
	if len(regions) == 0 {
		return km
	}
	switch policy {
	case PolicyNearest:
		for note := 0; note < 128; note++ {
			best := 0
			bestDist := absInt(regions[0].RootNote - note)
			for i := 1; i < len(regions); i++ {
				d := absInt(regions[i].RootNote - note)
				if d < bestDist {
					best, bestDist = i, d
				}
			}
			km.notes[note] = []RegionID{RegionID(best)}
		}
	default:
		for note := 0; note < 128; note++ {
			for i, r := range regions {
				if r.ContainsKey(note) {
					km.notes[note] = append(km.notes[note], RegionID(i))
				}
			}
		}
	}
	return km
}

// Policy reports the policy the map was built with.
func (km *KeyMap) Policy() KeyMapPolicy {
	return km.policy
}

// Region returns a region by id, or nil.
func (km *KeyMap) Region(id RegionID) *SampleRegion {
	if id < 0 || int(id) >= len(km.regions) {
		return nil
	}
	return km.regions[id]
}

// Resolve returns the matching regions in insertion order. An empty result
// means the note is silent.
func (km *KeyMap) Resolve(note, velocity int) []RegionID {
	return km.ResolveInto(nil, note, velocity)
}

// ResolveInto appends matches to dst[:0] and returns it. With enough capacity
// in dst it does not allocate.
func (km *KeyMap) ResolveInto(dst []RegionID, note, velocity int) []RegionID {
	dst = dst[:0]
	if km == nil || note < 0 || note > 127 {
		return dst
	}
	for _, id := range km.notes[note] {
		if km.policy == PolicyExactRange && !km.regions[id].ContainsVelocity(velocity) {
			continue
		}
		dst = append(dst, id)
	}
	return dst
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
