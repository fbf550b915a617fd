package txstatus

import "sync"

// Slots keeps the latest pending transaction per action kind ("create",
// "buy", ...). Starting a new action of a kind stops observing the previous
// one of that kind only; other kinds are untouched.
type Slots struct {
	mu     sync.Mutex
	byKind map[string]*PendingTransaction
}

func NewSlots() *Slots {
	return &Slots{byKind: make(map[string]*PendingTransaction)}
}

// Replace stores tx under kind and returns the superseded transaction, if any.
func (s *Slots) Replace(kind string, tx *PendingTransaction) *PendingTransaction {
	s.mu.Lock()
	prev := s.byKind[kind]
	s.byKind[kind] = tx
	s.mu.Unlock()

	if prev != nil && prev != tx {
		prev.Stop()
	}
	return prev
}

// Get returns the current transaction for kind, or nil.
func (s *Slots) Get(kind string) *PendingTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byKind[kind]
}

// Reset stops observing and forgets the transaction for kind.
func (s *Slots) Reset(kind string) {
	s.mu.Lock()
	prev := s.byKind[kind]
	delete(s.byKind, kind)
	s.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
}

// Kinds lists the kinds currently holding a transaction.
func (s *Slots) Kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.byKind))
	for k := range s.byKind {
		out = append(out, k)
	}
	return out
}
