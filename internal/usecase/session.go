package usecase

import (
	"sort"

	"github.com/swipestyle/go-backend/internal/domain"
)

// SessionCycler — состояние сессии свайпов одного пользователя: активная
// категория, очередь кандидатов, счётчик показов и ротация категорий.
// Состояние производное: в любой момент восстанавливается из каталога и
// снимка свайпов, за пределы сессии не персистится.
type SessionCycler struct {
	categories []string                 // канонический (лексикографический) порядок
	catalog    map[string][]domain.Item // вещи по категориям в порядке каталога
	items      map[string]domain.Item
	swiped     map[string]struct{}
	limit      int // число показов до принудительной смены категории

	category   string
	queue      []string // идентификаторы несвайпнутых вещей активной категории
	shownCount int
	lastSwiped string // последний свайп в активной категории, цель для undo
	terminal   bool
}

// DeriveSessionState строит состояние сессии из каталога и снимка свайпов.
// Чистая функция состояния: тесты собирают произвольные сессии без
// воспроизведения UI-событий.
func DeriveSessionState(catalog map[string][]domain.Item, swiped map[string]struct{}, limit int) *SessionCycler {
	categories := make([]string, 0, len(catalog))
	items := make(map[string]domain.Item)
	for category, categoryItems := range catalog {
		categories = append(categories, category)
		for _, item := range categoryItems {
			items[item.ID] = item
		}
	}
	sort.Strings(categories)

	if swiped == nil {
		swiped = make(map[string]struct{})
	}

	s := &SessionCycler{
		categories: categories,
		catalog:    catalog,
		items:      items,
		swiped:     swiped,
		limit:      limit,
	}

	// Idle -> первая категория с несвайпнутыми вещами, либо сразу Terminal
	if !s.advanceFrom("") {
		s.terminal = true
	}

	return s
}

// ActiveCategory возвращает активную категорию сессии.
func (s *SessionCycler) ActiveCategory() (string, bool) {
	if s.terminal {
		return "", false
	}
	return s.category, true
}

// Terminal сообщает, что несвайпнутых вещей не осталось ни в одной категории.
func (s *SessionCycler) Terminal() bool {
	return s.terminal
}

// Peek возвращает вещь для показа без изменения состояния.
func (s *SessionCycler) Peek() (domain.Item, bool) {
	if s.terminal || len(s.queue) == 0 {
		return domain.Item{}, false
	}
	return s.items[s.queue[0]], true
}

// ActiveCandidates возвращает несвайпнутые вещи активной категории
// в порядке каталога — кандидатов для рескоринга.
func (s *SessionCycler) ActiveCandidates() []domain.Item {
	if s.terminal {
		return nil
	}

	ids := s.unswipedIn(s.category)
	candidates := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		candidates = append(candidates, s.items[id])
	}
	return candidates
}

// InQueue сообщает, стоит ли вещь в очереди активной категории.
func (s *SessionCycler) InQueue(itemID string) bool {
	for _, id := range s.queue {
		if id == itemID {
			return true
		}
	}
	return false
}

// SetQueue задаёт порядок очереди активной категории после рескоринга.
// Вещи, не входящие в активную категорию или уже свайпнутые, игнорируются.
func (s *SessionCycler) SetQueue(orderedIDs []string) {
	queue := make([]string, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		item, ok := s.items[id]
		if !ok || item.Category != s.category {
			continue
		}
		if _, done := s.swiped[id]; done {
			continue
		}
		queue = append(queue, id)
	}
	s.queue = queue
}

// RecordSwipe фиксирует свайп вещи активной категории.
// Возвращает true, если сессия перешла в новую категорию (или в Terminal)
// и очередь требует рескоринга.
func (s *SessionCycler) RecordSwipe(itemID string) bool {
	if s.terminal {
		return false
	}

	s.swiped[itemID] = struct{}{}
	s.removeFromQueue(itemID)
	s.shownCount++
	s.lastSwiped = itemID

	return s.rotateIfExhausted()
}

// MarkAutoRejected убирает авто-отклонённые вещи из очереди как свайпнутые,
// не трогая счётчик показов: пользователь их не видел.
// Возвращает true при ротации категории.
func (s *SessionCycler) MarkAutoRejected(itemIDs []string) bool {
	if s.terminal || len(itemIDs) == 0 {
		return false
	}

	for _, id := range itemIDs {
		s.swiped[id] = struct{}{}
		s.removeFromQueue(id)
	}

	return s.rotateIfExhausted()
}

// Undo откатывает единственный последний свайп в активной категории.
// Если свайпов в текущей категории ещё не было — no-op; после ротации
// в новую категорию откат прежнего свайпа недоступен.
// Из Terminal undo возвращает сессию в CategoryActive.
// Возвращает идентификатор отменённой вещи.
func (s *SessionCycler) Undo() (string, bool) {
	if s.lastSwiped == "" {
		return "", false
	}

	undone := s.lastSwiped
	delete(s.swiped, undone)
	s.queue = append([]string{undone}, s.queue...)
	if s.shownCount > 0 {
		s.shownCount--
	}
	s.lastSwiped = ""
	s.terminal = false

	return undone, true
}

// rotateIfExhausted переводит сессию в следующую категорию, когда очередь
// пуста либо достигнут лимит показов. Без подходящей категории — Terminal:
// активная категория и цель undo при этом сохраняются, чтобы откат последнего
// свайпа мог вернуть сессию в CategoryActive.
func (s *SessionCycler) rotateIfExhausted() bool {
	if len(s.queue) > 0 && s.shownCount < s.limit {
		return false
	}

	if s.advanceFrom(s.category) {
		return true
	}

	s.terminal = true
	s.queue = nil
	return true
}

// advanceFrom ищет следующую категорию с несвайпнутыми вещами, начиная сразу
// после current и оборачиваясь по кругу. Пустой current — поиск с начала.
func (s *SessionCycler) advanceFrom(current string) bool {
	if len(s.categories) == 0 {
		return false
	}

	start := 0
	if current != "" {
		for i, category := range s.categories {
			if category == current {
				start = i + 1
				break
			}
		}
	}

	for offset := 0; offset < len(s.categories); offset++ {
		category := s.categories[(start+offset)%len(s.categories)]
		queue := s.unswipedIn(category)
		if len(queue) == 0 {
			continue
		}

		s.category = category
		s.queue = queue
		s.shownCount = 0
		s.lastSwiped = ""
		s.terminal = false
		return true
	}

	return false
}

func (s *SessionCycler) unswipedIn(category string) []string {
	var queue []string
	for _, item := range s.catalog[category] {
		if _, done := s.swiped[item.ID]; done {
			continue
		}
		queue = append(queue, item.ID)
	}
	return queue
}

func (s *SessionCycler) removeFromQueue(itemID string) {
	for i, id := range s.queue {
		if id == itemID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}
