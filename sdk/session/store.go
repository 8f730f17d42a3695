package session

import "sync"

// Store holds the session state. Only Manager writes to it. Subscribers run
// synchronously after each write, outside the lock, in subscription order.
type Store struct {
	mu     sync.Mutex
	state  State
	token  uint64
	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(State)
}

// NewStore returns a store in the NOT_AUTHENTICATED state.
func NewStore() *Store {
	return &Store{state: State{Status: StatusNotAuthenticated}}
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// begin starts a refresh: it moves to LOADING, keeping the principal, and
// returns the token the result must present to settle.
func (s *Store) begin() uint64 {
	s.mu.Lock()
	s.token++
	tok := s.token
	s.state = State{Status: StatusLoading, Principal: s.state.Principal}
	notify := s.snapshot()
	s.mu.Unlock()
	notify()
	return tok
}

// settle applies st if tok is still the newest token.
func (s *Store) settle(tok uint64, st State) bool {
	s.mu.Lock()
	if tok != s.token {
		s.mu.Unlock()
		return false
	}
	s.state = st.clone()
	notify := s.snapshot()
	s.mu.Unlock()
	notify()
	return true
}

// reset applies st unconditionally and invalidates in-flight refreshes.
func (s *Store) reset(st State) {
	s.mu.Lock()
	s.token++
	s.state = st.clone()
	notify := s.snapshot()
	s.mu.Unlock()
	notify()
}

// snapshot must be called with mu held.
func (s *Store) snapshot() func() {
	st := s.state.clone()
	subs := make([]func(State), len(s.subs))
	for i, sub := range s.subs {
		subs[i] = sub.fn
	}
	return func() {
		for _, fn := range subs {
			fn(st)
		}
	}
}
