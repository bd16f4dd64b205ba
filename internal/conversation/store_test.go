package conversation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndHistoryOrder(t *testing.T) {
	s := NewStore(0, nil)

	s.Append("sess", "q1", "a1")
	s.Append("sess", "q2", "a2")
	s.Append("sess", "q3", "a3")

	history := s.History("sess")
	require.Len(t, history, 3)
	assert.Equal(t, "q1", history[0].Question)
	assert.Equal(t, "a1", history[0].Answer)
	assert.Equal(t, "q3", history[2].Question)
	assert.False(t, history[0].AskedAt.IsZero())
}

func TestStore_UnknownSessionIsEmptyNotError(t *testing.T) {
	s := NewStore(0, nil)

	history := s.History("never-seen")
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s := NewStore(0, nil)

	s.Append("a", "question for a", "answer for a")
	s.Append("b", "question for b", "answer for b")

	historyA := s.History("a")
	require.Len(t, historyA, 1)
	assert.Equal(t, "question for a", historyA[0].Question)

	historyB := s.History("b")
	require.Len(t, historyB, 1)
	assert.Equal(t, "question for b", historyB[0].Question)
}

func TestStore_ClearRemovesOnlyTargetSession(t *testing.T) {
	s := NewStore(0, nil)

	s.Append("a", "q", "a")
	s.Append("b", "q", "a")

	s.Clear("a")

	assert.Empty(t, s.History("a"))
	assert.Len(t, s.History("b"), 1)

	// Clearing an unknown session is a no-op, not a panic.
	s.Clear("ghost")

	// A cleared session accepts new turns again.
	s.Append("a", "q2", "a2")
	assert.Len(t, s.History("a"), 1)
}

func TestStore_MaxTurnsEvictsOldest(t *testing.T) {
	s := NewStore(3, nil)

	for i := 1; i <= 5; i++ {
		s.Append("sess", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	history := s.History("sess")
	require.Len(t, history, 3)
	assert.Equal(t, "q3", history[0].Question)
	assert.Equal(t, "q5", history[2].Question)
}

func TestStore_HistoryReturnsCopy(t *testing.T) {
	s := NewStore(0, nil)
	s.Append("sess", "q", "a")

	history := s.History("sess")
	history[0].Question = "tampered"

	assert.Equal(t, "q", s.History("sess")[0].Question)
}

func TestStore_FormatRecent(t *testing.T) {
	s := NewStore(0, nil)

	assert.Equal(t, "", s.FormatRecent("empty", 5))

	s.Append("sess", "What is IBNR?", "Incurred but not reported reserves.")
	s.Append("sess", "How is it estimated?", "Commonly with chain-ladder methods.")

	got := s.FormatRecent("sess", 5)
	want := "User: What is IBNR?\nAssistant: Incurred but not reported reserves.\n\n" +
		"User: How is it estimated?\nAssistant: Commonly with chain-ladder methods.\n"
	assert.Equal(t, want, got)
}

func TestStore_FormatRecentLimitsToNewest(t *testing.T) {
	s := NewStore(0, nil)
	for i := 1; i <= 4; i++ {
		s.Append("sess", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	got := s.FormatRecent("sess", 2)
	assert.NotContains(t, got, "q1")
	assert.NotContains(t, got, "q2")
	assert.Contains(t, got, "q3")
	assert.Contains(t, got, "q4")
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := NewStore(0, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("sess-%d", n%2)
			for j := 0; j < 50; j++ {
				s.Append(sessionID, "q", "a")
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.History("sess-0"), 250)
	assert.Len(t, s.History("sess-1"), 250)
}
