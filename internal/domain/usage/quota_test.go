package usage

import "testing"

func TestNewQuotaState(t *testing.T) {
	cases := []struct {
		name      string
		count     int
		limit     int
		remaining int
		exhausted bool
	}{
		{name: "fresh", count: 0, limit: 20, remaining: 20},
		{name: "partial", count: 7, limit: 20, remaining: 13},
		{name: "at_limit", count: 20, limit: 20, remaining: 0, exhausted: true},
		{name: "over_limit", count: 23, limit: 20, remaining: 0, exhausted: true},
		{name: "negative_count", count: -3, limit: 20, remaining: 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQuotaState(tc.count, tc.limit)
			if q.Remaining != tc.remaining {
				t.Fatalf("Remaining: want=%d got=%d", tc.remaining, q.Remaining)
			}
			if q.Limit != tc.limit {
				t.Fatalf("Limit: want=%d got=%d", tc.limit, q.Limit)
			}
			if q.Exhausted() != tc.exhausted {
				t.Fatalf("Exhausted: want=%v got=%v", tc.exhausted, q.Exhausted())
			}
		})
	}
}

func TestNewGenerationEvent(t *testing.T) {
	ev := NewGenerationEvent("user-1", "", nil)
	if !ev.IsGeneration() {
		t.Fatalf("IsGeneration: want true")
	}
	if ev.SessionID != nil {
		t.Fatalf("SessionID: want nil for empty session, got %q", *ev.SessionID)
	}
	if ev.EventValue == nil || *ev.EventValue != 1 {
		t.Fatalf("EventValue: want 1")
	}
	other := &GenerationEvent{EventType: "page_view"}
	if other.IsGeneration() {
		t.Fatalf("IsGeneration: want false for page_view")
	}
}
