package memory

import "sort"

// Reflection is a session-end self-review record, grounded on
// storage/reflections.py's ReflectionEntry.
type Reflection struct {
	TimestampMs int64
	SessionID   string
	Summary     string
	Lessons     []string
}

// ReflectionStore persists session reflections and surfaces recent
// lessons to seed the next session's system prompt.
type ReflectionStore interface {
	Append(reflection Reflection)
	RecentLessons(limit int) []string
}

// InMemoryReflectionStore is a ReflectionStore reference implementation.
type InMemoryReflectionStore struct {
	entries []Reflection
}

// NewInMemoryReflectionStore constructs an empty store.
func NewInMemoryReflectionStore() *InMemoryReflectionStore {
	return &InMemoryReflectionStore{}
}

func (s *InMemoryReflectionStore) Append(reflection Reflection) {
	s.entries = append(s.entries, reflection)
}

// RecentLessons flattens lessons from the most recent reflections first,
// matching get_recent_lessons's newest-first ordering.
func (s *InMemoryReflectionStore) RecentLessons(limit int) []string {
	ordered := append([]Reflection(nil), s.entries...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TimestampMs > ordered[j].TimestampMs
	})

	var lessons []string
	for _, r := range ordered {
		lessons = append(lessons, r.Lessons...)
		if limit > 0 && len(lessons) >= limit {
			return lessons[:limit]
		}
	}
	return lessons
}
