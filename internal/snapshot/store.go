package snapshot

import "sync/atomic"

// Reader отдает текущий снимок
type Reader interface {
	Read() Snapshot
}

// Store хранит текущий снимок. Один писатель, сколько угодно читателей.
// Критическая секция - одна атомарная операция с указателем
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore создает хранилище с заглушкой
func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Publish заменяет текущий снимок
func (s *Store) Publish(snap Snapshot) {
	snap = snap.clone()
	s.current.Store(&snap)
}

// Read возвращает последний опубликованный снимок или заглушку
func (s *Store) Read() Snapshot {
	p := s.current.Load()
	if p == nil {
		return Placeholder()
	}
	return p.clone()
}

// Reset возвращает хранилище к заглушке
func (s *Store) Reset() {
	p := Placeholder()
	s.current.Store(&p)
}
