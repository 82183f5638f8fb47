package variant

// mapData implements a Map variant's key→value storage. Keys are
// arbitrary Variants compared by structural Equal, so a plain Go map
// can't key on them directly; instead entries are bucketed by Hash and
// disambiguated within a bucket by Equal — a small hand-rolled chained
// hash table, the natural Go shape for "hashable by structural equality"
// (spec.md §4.2) when the key type isn't Go-comparable.
type mapData struct {
	buckets map[uint64][]Pair
	count   int
}

func newMapData() *mapData {
	return &mapData{buckets: make(map[uint64][]Pair)}
}

func (m *mapData) set(key, value *Variant) {
	h := key.Hash()
	bucket := m.buckets[h]
	for i, p := range bucket {
		if p.Key.Equal(key) {
			bucket[i].Value = value
			return
		}
	}
	m.buckets[h] = append(bucket, Pair{Key: key, Value: value})
	m.count++
}

func (m *mapData) get(key *Variant) (*Variant, bool) {
	for _, p := range m.buckets[key.Hash()] {
		if p.Key.Equal(key) {
			return p.Value, true
		}
	}
	return nil, false
}

func (m *mapData) delete(key *Variant) {
	h := key.Hash()
	bucket := m.buckets[h]
	for i, p := range bucket {
		if p.Key.Equal(key) {
			m.buckets[h] = append(bucket[:i], bucket[i+1:]...)
			m.count--
			return
		}
	}
}

func (m *mapData) len() int { return m.count }

func (m *mapData) pairs() []Pair {
	out := make([]Pair, 0, m.count)
	for _, bucket := range m.buckets {
		out = append(out, bucket...)
	}
	return out
}

func (m *mapData) clone() *mapData {
	cp := newMapData()
	for _, p := range m.pairs() {
		cp.set(p.Key.Clone(), p.Value.Clone())
	}
	return cp
}

func (m *mapData) equal(o *mapData) bool {
	if m.count != o.count {
		return false
	}
	for _, p := range m.pairs() {
		ov, ok := o.get(p.Key)
		if !ok || !ov.Equal(p.Value) {
			return false
		}
	}
	return true
}
