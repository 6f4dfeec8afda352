package card

// Selection is an insertion-ordered set of entity ids
type Selection struct {
	ids   []string
	index map[string]int
}

// NewSelection creates a selection holding ids in order, ignoring duplicates
func NewSelection(ids ...string) *Selection {
	s := &Selection{index: make(map[string]int)}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id; adding a present id is a no-op
func (s *Selection) Add(id string) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

// Remove deletes id; removing an absent id is a no-op
func (s *Selection) Remove(id string) {
	pos, ok := s.index[id]
	if !ok {
		return
	}
	s.ids = append(s.ids[:pos], s.ids[pos+1:]...)
	delete(s.index, id)
	for i := pos; i < len(s.ids); i++ {
		s.index[s.ids[i]] = i
	}
}

// Has reports membership
func (s *Selection) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

// Len returns the number of selected ids
func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns a copy of the selected ids in insertion order, never nil
func (s *Selection) IDs() []string {
	out := make([]string, 0, s.Len())
	if s == nil {
		return out
	}
	return append(out, s.ids...)
}

// Retain drops every id not in keep and returns the dropped ids
func (s *Selection) Retain(keep map[string]bool) []string {
	var dropped []string
	for _, id := range s.IDs() {
		if !keep[id] {
			s.Remove(id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}
