package tools

import (
	"fmt"
	"sync"
)

// Source is a citation unit surfaced to the user alongside an answer.
type Source struct {
	CourseTitle       string  `json:"course_title"`
	LessonNumber      *int    `json:"lesson_number"`
	LessonLink        *string `json:"lesson_link"`
	DiscoveredInRound int     `json:"discovered_in_round,omitempty"`
}

// SourceKey identifies a source for deduplication. Two passages from the
// same lesson share a key.
type SourceKey struct {
	CourseTitle string
	Lesson      int
	HasLesson   bool
}

func (s Source) Key() SourceKey {
	k := SourceKey{CourseTitle: s.CourseTitle}
	if s.LessonNumber != nil {
		k.Lesson = *s.LessonNumber
		k.HasLesson = true
	}
	return k
}

// Label renders the source the way it is shown next to an answer.
func (s Source) Label() string {
	if s.LessonNumber == nil {
		return s.CourseTitle
	}
	return fmt.Sprintf("%s - Lesson %d", s.CourseTitle, *s.LessonNumber)
}

// SourceSet collects the sources surfaced by citable tools. A fresh set is
// created for every invocation scope, so nothing leaks between queries.
type SourceSet struct {
	mu   sync.Mutex
	last []Source
}

func NewSourceSet() *SourceSet {
	return &SourceSet{}
}

// Replace overwrites the tracked sources. Empty input is ignored.
func (s *SourceSet) Replace(sources []Source) {
	if s == nil || len(sources) == 0 {
		return
	}
	cp := make([]Source, len(sources))
	copy(cp, sources)
	s.mu.Lock()
	s.last = cp
	s.mu.Unlock()
}

// Last returns a copy of the most recently populated source list.
func (s *SourceSet) Last() []Source {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.last) == 0 {
		return nil
	}
	cp := make([]Source, len(s.last))
	copy(cp, s.last)
	return cp
}

func (s *SourceSet) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.last = nil
	s.mu.Unlock()
}
