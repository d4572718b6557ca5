package serverutils

import (
	"sync"

	"github.com/google/uuid"
)

type docLock struct {
	mu   sync.Mutex
	refs int
}

// DocumentLocker serializes writers per document id. Writers on different
// documents never block each other, and readers never take these locks.
type DocumentLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*docLock
}

func NewDocumentLocker() *DocumentLocker {
	return &DocumentLocker{
		locks: make(map[uuid.UUID]*docLock),
	}
}

func (l *DocumentLocker) Lock(documentId uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.locks[documentId]
	if !ok {
		entry = &docLock{}
		l.locks[documentId] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *DocumentLocker) Unlock(documentId uuid.UUID) {
	l.mu.Lock()
	entry, ok := l.locks[documentId]
	if !ok {
		l.mu.Unlock()
		panic("unlock of unheld document lock")
	}
	entry.refs--
	if entry.refs == 0 {
		// Last holder out, drop the entry so the map stays bounded.
		delete(l.locks, documentId)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
