package set

// Set unordered set with O(1) membership and swap delete
//
// Values returns elements in no particular order, the order changes on Remove.
type Set[T comparable] struct {
	index  map[T]int
	values []T
}

// New new set
func New[T comparable]() *Set[T] {
	return &Set[T]{index: map[T]int{}}
}

// Has membership
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Add add v, returns false if it was already present
func (s *Set[T]) Add(v T) bool {
	if s.Has(v) {
		return false
	}

	s.index[v] = len(s.values)
	s.values = append(s.values, v)
	return true
}

// Remove remove v by moving the last element into its slot
func (s *Set[T]) Remove(v T) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}

	last := len(s.values) - 1
	if i != last {
		s.values[i] = s.values[last]
		s.index[s.values[i]] = i
	}

	var zero T
	s.values[last] = zero
	s.values = s.values[:last]
	delete(s.index, v)
	return true
}

// Len size
func (s *Set[T]) Len() int {
	return len(s.values)
}

// Values copy of the elements
func (s *Set[T]) Values() []T {
	out := make([]T, len(s.values))
	copy(out, s.values)
	return out
}
