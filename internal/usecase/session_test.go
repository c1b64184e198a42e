package usecase

import (
	"fmt"
	"testing"

	"github.com/swipestyle/go-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogOf(spec map[string]int) map[string][]domain.Item {
	catalog := make(map[string][]domain.Item, len(spec))
	for category, count := range spec {
		for i := 0; i < count; i++ {
			catalog[category] = append(catalog[category], domain.Item{
				ID:       fmt.Sprintf("%s/%d", category, i),
				Category: category,
			})
		}
	}
	return catalog
}

func TestDeriveSessionState(t *testing.T) {
	t.Run("empty catalog is terminal", func(t *testing.T) {
		s := DeriveSessionState(nil, nil, 5)
		assert.True(t, s.Terminal())

		_, ok := s.Peek()
		assert.False(t, ok)
	})

	t.Run("starts with first category in lexicographic order", func(t *testing.T) {
		s := DeriveSessionState(catalogOf(map[string]int{"shoes": 2, "dresses": 2, "hats": 2}), nil, 5)

		category, ok := s.ActiveCategory()
		require.True(t, ok)
		assert.Equal(t, "dresses", category)
	})

	t.Run("fully swiped category is skipped", func(t *testing.T) {
		swiped := map[string]struct{}{"dresses/0": {}, "dresses/1": {}}
		s := DeriveSessionState(catalogOf(map[string]int{"dresses": 2, "hats": 1}), swiped, 5)

		category, ok := s.ActiveCategory()
		require.True(t, ok)
		assert.Equal(t, "hats", category)
	})

	t.Run("everything swiped is terminal", func(t *testing.T) {
		swiped := map[string]struct{}{"dresses/0": {}}
		s := DeriveSessionState(catalogOf(map[string]int{"dresses": 1}), swiped, 5)
		assert.True(t, s.Terminal())
	})
}

func TestRotationAfterLimit(t *testing.T) {
	s := DeriveSessionState(catalogOf(map[string]int{"dresses": 7, "hats": 2}), nil, 5)

	// Первые четыре свайпа не ротируют
	for i := 0; i < 4; i++ {
		item, ok := s.Peek()
		require.True(t, ok)
		assert.False(t, s.RecordSwipe(item.ID))
	}

	// Пятый свайп достигает лимита: активной становится следующая категория
	item, ok := s.Peek()
	require.True(t, ok)
	assert.True(t, s.RecordSwipe(item.ID))

	category, ok := s.ActiveCategory()
	require.True(t, ok)
	assert.Equal(t, "hats", category)
}

func TestRotationWrapsBackToSameCategory(t *testing.T) {
	// После лимита единственная категория с остатком — текущая
	s := DeriveSessionState(catalogOf(map[string]int{"dresses": 7}), nil, 5)

	for i := 0; i < 5; i++ {
		item, ok := s.Peek()
		require.True(t, ok)
		s.RecordSwipe(item.ID)
	}

	category, ok := s.ActiveCategory()
	require.True(t, ok)
	assert.Equal(t, "dresses", category)
	assert.False(t, s.Terminal())

	// Счётчик показов сброшен: ещё пять свайпов доступны
	item, ok := s.Peek()
	require.True(t, ok)
	assert.False(t, s.RecordSwipe(item.ID))
}

func TestRotationOnEmptyQueue(t *testing.T) {
	s := DeriveSessionState(catalogOf(map[string]int{"dresses": 2, "hats": 1}), nil, 5)

	for i := 0; i < 2; i++ {
		item, ok := s.Peek()
		require.True(t, ok)
		s.RecordSwipe(item.ID)
	}

	category, ok := s.ActiveCategory()
	require.True(t, ok)
	assert.Equal(t, "hats", category)
}

func TestTerminalAfterLastItem(t *testing.T) {
	s := DeriveSessionState(catalogOf(map[string]int{"dresses": 1}), nil, 5)

	item, ok := s.Peek()
	require.True(t, ok)
	assert.True(t, s.RecordSwipe(item.ID))
	assert.True(t, s.Terminal())
}

func TestSetQueueFiltersForeignAndSwiped(t *testing.T) {
	s := DeriveSessionState(catalogOf(map[string]int{"dresses": 3, "hats": 1}), nil, 5)

	item, ok := s.Peek()
	require.True(t, ok)
	s.RecordSwipe(item.ID)

	s.SetQueue([]string{item.ID, "hats/0", "dresses/2", "unknown", "dresses/1"})

	assert.False(t, s.InQueue(item.ID))
	assert.False(t, s.InQueue("hats/0"))
	assert.False(t, s.InQueue("unknown"))
	assert.True(t, s.InQueue("dresses/1"))

	// Порядок очереди соответствует заданному
	next, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, "dresses/2", next.ID)
}

func TestMarkAutoRejectedDoesNotCountAsShown(t *testing.T) {
	s := DeriveSessionState(catalogOf(map[string]int{"dresses": 7, "hats": 1}), nil, 5)

	// Авто-отклонение двух вещей не приближает ротацию по лимиту
	assert.False(t, s.MarkAutoRejected([]string{"dresses/5", "dresses/6"}))

	for i := 0; i < 4; i++ {
		item, ok := s.Peek()
		require.True(t, ok)
		assert.False(t, s.RecordSwipe(item.ID))
	}

	item, ok := s.Peek()
	require.True(t, ok)
	assert.True(t, s.RecordSwipe(item.ID))
}

func TestMarkAutoRejectedCanRotate(t *testing.T) {
	s := DeriveSessionState(catalogOf(map[string]int{"dresses": 2, "hats": 1}), nil, 5)

	assert.True(t, s.MarkAutoRejected([]string{"dresses/0", "dresses/1"}))

	category, ok := s.ActiveCategory()
	require.True(t, ok)
	assert.Equal(t, "hats", category)
}

func TestUndo(t *testing.T) {
	t.Run("noop on fresh category", func(t *testing.T) {
		s := DeriveSessionState(catalogOf(map[string]int{"dresses": 2}), nil, 5)

		_, ok := s.Undo()
		assert.False(t, ok)
	})

	t.Run("restores last swiped item to the head", func(t *testing.T) {
		s := DeriveSessionState(catalogOf(map[string]int{"dresses": 3}), nil, 5)

		item, ok := s.Peek()
		require.True(t, ok)
		s.RecordSwipe(item.ID)

		undone, ok := s.Undo()
		require.True(t, ok)
		assert.Equal(t, item.ID, undone)

		head, ok := s.Peek()
		require.True(t, ok)
		assert.Equal(t, item.ID, head.ID)

		// Второй откат подряд невозможен
		_, ok = s.Undo()
		assert.False(t, ok)
	})

	t.Run("noop after rotation to a new category", func(t *testing.T) {
		s := DeriveSessionState(catalogOf(map[string]int{"dresses": 1, "hats": 1}), nil, 5)

		item, ok := s.Peek()
		require.True(t, ok)
		assert.True(t, s.RecordSwipe(item.ID))

		_, ok = s.Undo()
		assert.False(t, ok)
	})

	t.Run("recovers from terminal", func(t *testing.T) {
		s := DeriveSessionState(catalogOf(map[string]int{"dresses": 1}), nil, 5)

		item, ok := s.Peek()
		require.True(t, ok)
		s.RecordSwipe(item.ID)
		require.True(t, s.Terminal())

		undone, ok := s.Undo()
		require.True(t, ok)
		assert.Equal(t, item.ID, undone)
		assert.False(t, s.Terminal())

		head, ok := s.Peek()
		require.True(t, ok)
		assert.Equal(t, item.ID, head.ID)
	})
}
