package utils

// IDSet tracks identifiers already seen during one extraction pass.
// The pipeline is single-threaded, so it carries no lock.
type IDSet struct {
	seen map[string]int
}

// NewIDSet creates an empty IDSet.
func NewIDSet() *IDSet {
	return &IDSet{seen: make(map[string]int)}
}

// Add records id and returns true if it was not seen before.
func (s *IDSet) Add(id string) bool {
	s.seen[id]++
	return s.seen[id] == 1
}

// Contains returns true if id has already been recorded.
func (s *IDSet) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Count returns how many times id was added.
func (s *IDSet) Count(id string) int {
	return s.seen[id]
}

// Size returns the number of distinct ids tracked.
func (s *IDSet) Size() int {
	return len(s.seen)
}
