package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReflectionRecentLessonsNewestFirst(t *testing.T) {
	s := NewInMemoryReflectionStore()
	s.Append(Reflection{TimestampMs: 100, Summary: "first session", Lessons: []string{"lesson-a"}})
	s.Append(Reflection{TimestampMs: 200, Summary: "second session", Lessons: []string{"lesson-b", "lesson-c"}})

	lessons := s.RecentLessons(0)
	assert.Equal(t, []string{"lesson-b", "lesson-c", "lesson-a"}, lessons)
}

func TestReflectionRecentLessonsRespectsLimit(t *testing.T) {
	s := NewInMemoryReflectionStore()
	s.Append(Reflection{TimestampMs: 100, Lessons: []string{"a", "b"}})
	s.Append(Reflection{TimestampMs: 200, Lessons: []string{"c", "d"}})

	assert.Equal(t, []string{"c", "d", "a"}, s.RecentLessons(3))
}
