// Package rangeset implements the half-open byte-range set a StreamedFile
// uses to track which parts of a download are already on disk, per
// SPEC_FULL.md §4.8 and the GLOSSARY entry for "Range set".
package rangeset

import "sort"

// span is a half-open interval [Start, End).
type span struct {
	Start, End int64
}

// Set is a sorted, merging set of half-open byte ranges. It is not safe
// for concurrent use; callers guard it with their own mutex (streaming.Handle
// guards it with its single sync.Mutex, the one its condvar also uses).
type Set struct {
	spans []span
}

// New returns an empty range set.
func New() *Set {
	return &Set{}
}

// Contains reports whether pos falls inside a recorded range.
func (s *Set) Contains(pos int64) bool {
	i := sort.Search(len(s.spans), func(i int) bool { return s.spans[i].End > pos })
	return i < len(s.spans) && s.spans[i].Start <= pos
}

// Insert records [start, end) as downloaded, merging with adjacent or
// overlapping existing spans.
func (s *Set) Insert(start, end int64) {
	if end <= start {
		return
	}
	// Find the first span that could overlap or touch [start, end).
	i := sort.Search(len(s.spans), func(i int) bool { return s.spans[i].End >= start })
	j := i
	for j < len(s.spans) && s.spans[j].Start <= end {
		if s.spans[j].Start < start {
			start = s.spans[j].Start
		}
		if s.spans[j].End > end {
			end = s.spans[j].End
		}
		j++
	}
	merged := append([]span{}, s.spans[:i]...)
	merged = append(merged, span{Start: start, End: end})
	merged = append(merged, s.spans[j:]...)
	s.spans = merged
}

// Gaps returns the sub-ranges of [from, to) not yet covered by the set, in
// ascending order. Used by the downloader to refill holes after EOF per
// §4.8's last bullet ("iterates gaps ... so seek-backwards still works").
func (s *Set) Gaps(from, to int64) []struct{ Start, End int64 } {
	var gaps []struct{ Start, End int64 }
	cursor := from
	for _, sp := range s.spans {
		if sp.End <= cursor {
			continue
		}
		if sp.Start >= to {
			break
		}
		if sp.Start > cursor {
			gaps = append(gaps, struct{ Start, End int64 }{cursor, min64(sp.Start, to)})
		}
		if sp.End > cursor {
			cursor = sp.End
		}
		if cursor >= to {
			break
		}
	}
	if cursor < to {
		gaps = append(gaps, struct{ Start, End int64 }{cursor, to})
	}
	return gaps
}

// Max returns the end of the last recorded span, i.e. the highest
// contiguous-from-zero byte offset isn't implied, just the overall extent.
func (s *Set) Max() int64 {
	if len(s.spans) == 0 {
		return 0
	}
	return s.spans[len(s.spans)-1].End
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
