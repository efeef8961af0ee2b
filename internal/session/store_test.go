package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(maxHistory int) *Store {
	return New(maxHistory, log.NewNop())
}

func TestStoreCreate(t *testing.T) {
	s := newTestStore(2)

	a := s.Create()
	b := s.Create()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, s.Count())
	assert.Empty(t, s.History(a))
}

func TestStoreAddExchange(t *testing.T) {
	t.Run("records user and assistant turns in order", func(t *testing.T) {
		s := newTestStore(2)
		id := s.Create()

		s.AddExchange(id, "What is MCP?", "A protocol for model context.")

		turns := s.History(id)
		require.Len(t, turns, 2)
		assert.Equal(t, Turn{Role: RoleUser, Content: "What is MCP?"}, turns[0])
		assert.Equal(t, Turn{Role: RoleAssistant, Content: "A protocol for model context."}, turns[1])
	})

	t.Run("unknown session is created implicitly", func(t *testing.T) {
		s := newTestStore(2)

		s.AddExchange("client-chosen-id", "q", "a")

		assert.Equal(t, 1, s.Count())
		assert.Len(t, s.History("client-chosen-id"), 2)
	})

	t.Run("truncates oldest turns beyond the limit", func(t *testing.T) {
		s := newTestStore(2)
		id := s.Create()

		for i := 1; i <= 3; i++ {
			s.AddExchange(id, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		}

		turns := s.History(id)
		require.Len(t, turns, 4)
		assert.Equal(t, "q2", turns[0].Content)
		assert.Equal(t, "a3", turns[3].Content)
	})

	t.Run("default limit applies when maxHistory is zero", func(t *testing.T) {
		s := newTestStore(0)
		id := s.Create()

		for i := 0; i < 5; i++ {
			s.AddExchange(id, "q", "a")
		}

		assert.Len(t, s.History(id), DefaultMaxHistory*2)
	})
}

func TestStoreHistoryReturnsCopy(t *testing.T) {
	s := newTestStore(2)
	id := s.Create()
	s.AddExchange(id, "q", "a")

	turns := s.History(id)
	turns[0].Content = "mutated"

	assert.Equal(t, "q", s.History(id)[0].Content)
}

func TestStoreFormattedHistory(t *testing.T) {
	s := newTestStore(2)
	id := s.Create()

	assert.Empty(t, s.FormattedHistory(id))
	assert.Empty(t, s.FormattedHistory("no-such-session"))

	s.AddExchange(id, "What is RAG?", "Retrieval-augmented generation.")
	s.AddExchange(id, "Name one use.", "Question answering over documents.")

	want := "User: What is RAG?\n" +
		"Assistant: Retrieval-augmented generation.\n" +
		"User: Name one use.\n" +
		"Assistant: Question answering over documents."
	assert.Equal(t, want, s.FormattedHistory(id))
}

func TestStoreClear(t *testing.T) {
	s := newTestStore(2)
	id := s.Create()
	s.AddExchange(id, "q", "a")

	s.Clear(id)

	assert.Zero(t, s.Count())
	assert.Empty(t, s.History(id))

	// Clearing an unknown session is a no-op.
	s.Clear("missing")
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := newTestStore(5)
	id := s.Create()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.AddExchange(id, fmt.Sprintf("q%d", n), fmt.Sprintf("a%d", n))
		}(i)
		go func() {
			defer wg.Done()
			_ = s.FormattedHistory(id)
		}()
	}
	wg.Wait()

	assert.Len(t, s.History(id), 10)
}
