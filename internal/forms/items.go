package forms

import (
	"errors"

	"github.com/google/uuid"
)

var ErrItemNotFound = errors.New("item not found")

// Identifiable описывает элемент списка со стабильным идентификатором.
type Identifiable[T any] interface {
	ItemID() string
	WithID(id string) T
}

// List хранит элементы в порядке добавления и адресует их по идентификатору.
type List[T Identifiable[T]] struct {
	items []T
}

// NewList создает список. Элементам без идентификатора он назначается.
func NewList[T Identifiable[T]](items ...T) *List[T] {
	list := &List[T]{items: make([]T, 0, len(items))}
	for _, item := range items {
		if item.ItemID() == "" {
			item = item.WithID(uuid.NewString())
		}
		list.items = append(list.items, item)
	}
	return list
}

// Add добавляет элемент в конец списка с новым идентификатором.
func (l *List[T]) Add(item T) T {
	item = item.WithID(uuid.NewString())
	l.items = append(l.items, item)
	return item
}

// Update заменяет элемент с идентификатором id, сохраняя id и позицию.
func (l *List[T]) Update(id string, item T) (T, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, ErrItemNotFound
	}

	item = item.WithID(id)
	l.items[idx] = item
	return item, nil
}

// Delete удаляет элемент по идентификатору.
func (l *List[T]) Delete(id string) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return ErrItemNotFound
	}

	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return nil
}

// Get возвращает элемент по идентификатору.
func (l *List[T]) Get(id string) (T, bool) {
	idx := l.indexOf(id)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return l.items[idx], true
}

// Items возвращает копию элементов в порядке добавления.
func (l *List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List[T]) Len() int {
	return len(l.items)
}

func (l *List[T]) HasItems() bool {
	return len(l.items) > 0
}

func (l *List[T]) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for idx, item := range l.items {
		if item.ItemID() == id {
			return idx
		}
	}
	return -1
}
