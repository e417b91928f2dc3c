package rangeset

import "testing"

func TestInsertAndContains(t *testing.T) {
	s := New()
	s.Insert(0, 100)
	if !s.Contains(0) || !s.Contains(99) {
		t.Fatalf("expected [0,100) to contain edges")
	}
	if s.Contains(100) {
		t.Fatalf("end is exclusive")
	}
}

func TestInsertMerge(t *testing.T) {
	s := New()
	s.Insert(0, 10)
	s.Insert(20, 30)
	s.Insert(10, 20) // bridges the gap
	if !s.Contains(15) {
		t.Fatalf("expected merged range to contain 15")
	}
	if len(s.spans) != 1 {
		t.Fatalf("expected a single merged span, got %d", len(s.spans))
	}
}

func TestGaps(t *testing.T) {
	s := New()
	s.Insert(0, 10)
	s.Insert(50, 60)
	gaps := s.Gaps(0, 100)
	want := []struct{ Start, End int64 }{{10, 50}, {60, 100}}
	if len(gaps) != len(want) {
		t.Fatalf("got %d gaps, want %d: %+v", len(gaps), len(want), gaps)
	}
	for i, g := range want {
		if gaps[i] != g {
			t.Fatalf("gap %d = %+v, want %+v", i, gaps[i], g)
		}
	}
}

func TestGapsBackwardSeek(t *testing.T) {
	// Simulates §4.8: seek backward into a region not yet downloaded.
	s := New()
	s.Insert(90, 100)
	gaps := s.Gaps(0, 100)
	if len(gaps) != 1 || gaps[0].Start != 0 || gaps[0].End != 90 {
		t.Fatalf("unexpected gaps: %+v", gaps)
	}
}
