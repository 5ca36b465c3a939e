package callService

import (
	"VoiceAgentGolang/internal/api/call"
	"VoiceAgentGolang/internal/entity"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// sessionStore keeps live call sessions in memory. Calls are short-lived and
// bound to one process, so there is no persistence; a crashed process means
// the caller starts over, which matches what the phone channel can promise
// anyway.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	log      *logrus.Logger
	idle     time.Duration
	stop     chan struct{}
}

type sessionEntry struct {
	mu      sync.Mutex
	session *entity.CallSession
}

func newSessionStore(log *logrus.Logger, idle, sweep time.Duration) *sessionStore {
	s := &sessionStore{
		sessions: make(map[string]*sessionEntry),
		log:      log,
		idle:     idle,
		stop:     make(chan struct{}),
	}
	go s.janitor(sweep)
	return s
}

// Acquire locks the session for one turn, creating it on first contact.
// A turn arriving while another is still held is rejected rather than
// queued: the gateway retried or the caller barged in, and replaying both
// turns would double-consume retry budgets.
func (s *sessionStore) Acquire(callID, fromNumber string) (*entity.CallSession, func(), error) {
	s.mu.Lock()
	entry, ok := s.sessions[callID]
	if !ok {
		now := time.Now().UTC()
		entry = &sessionEntry{
			session: &entity.CallSession{
				ID:            callID,
				CallID:        callID,
				CustomerPhone: fromNumber,
				Step:          entity.StepGreetAskName,
				CreatedAt:     now,
				LastActivity:  now,
			},
		}
		s.sessions[callID] = entry
	}
	s.mu.Unlock()

	if !entry.mu.TryLock() {
		return nil, nil, call.ErrDuplicateTurn
	}

	if time.Since(entry.session.LastActivity) > s.idle {
		entry.session.Step = entity.StepEnded
		entry.mu.Unlock()
		return nil, nil, call.ErrSessionExpired
	}

	entry.session.LastActivity = time.Now().UTC()
	entry.session.TurnSeq++

	return entry.session, entry.mu.Unlock, nil
}

// Drop forgets a session once the call has ended.
func (s *sessionStore) Drop(callID string) {
	s.mu.Lock()
	delete(s.sessions, callID)
	s.mu.Unlock()
}

func (s *sessionStore) Close() {
	close(s.stop)
}

func (s *sessionStore) janitor(sweep time.Duration) {
	ticker := time.NewTicker(sweep)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweepIdle()
		}
	}
}

func (s *sessionStore) sweepIdle() {
	cutoff := time.Now().UTC().Add(-s.idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	for callID, entry := range s.sessions {
		if !entry.mu.TryLock() {
			continue
		}
		stale := entry.session.LastActivity.Before(cutoff)
		entry.mu.Unlock()

		if stale {
			delete(s.sessions, callID)
			s.log.WithFields(logrus.Fields{
				"call_id": callID,
			}).Info("Swept idle call session")
		}
	}
}
