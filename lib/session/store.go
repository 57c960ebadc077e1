// Copyright 2026 Rapid SCADA Agent contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"crypto/rand"
	"encoding/binary"
	"sort"
	"strings"
	"sync"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/rapidscada/agent/constants"
)

// Store is a bounded, mutex-guarded map of live sessions. All access is
// serialized on a single mutex; simplicity is preferred here over
// fine-grained locking (spec §4.5).
type Store struct {
	mu       sync.Mutex
	sessions map[uint64]*Session
	clock    clockwork.Clock
	log      *logrus.Entry
}

// NewStore constructs an empty Store. A nil clock defaults to the real
// wall clock.
func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		sessions: make(map[uint64]*Session),
		clock:    clock,
		log:      logrus.WithField(trace.Component, "session_store"),
	}
}

// Create allocates a new session with a fresh random 64-bit id. It
// refuses once the store holds MaxSessions sessions, and gives up on id
// generation after MaxIDAttempts collisions.
func (s *Store) Create(clientIP string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= constants.MaxSessions {
		return nil, trace.LimitExceeded("maximum number of sessions (%d) reached", constants.MaxSessions)
	}

	for attempt := 0; attempt < constants.MaxIDAttempts; attempt++ {
		id, err := randomID()
		if err != nil {
			return nil, trace.Wrap(err)
		}
		if id == 0 {
			continue
		}
		if _, exists := s.sessions[id]; exists {
			continue
		}

		sess := &Session{
			id:           id,
			clientIP:     clientIP,
			lastActivity: s.clock.Now(),
		}
		s.sessions[id] = sess
		return sess, nil
	}

	return nil, trace.LimitExceeded("could not allocate a unique session id after %d attempts", constants.MaxIDAttempts)
}

// Get resolves id to a live session, touching its last-activity time.
// Returns nil if the id is unknown or expired.
func (s *Store) Get(id uint64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	now := s.clock.Now()
	if sess.idleSince(now) > constants.SessionTTL {
		delete(s.sessions, id)
		return nil
	}
	sess.touch(now)
	return sess
}

// Sweep removes every session whose idle time exceeds SessionTTL.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince(now) > constants.SessionTTL {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Debugf("swept %d expired session(s)", removed)
	}
	return removed
}

// Clear empties the store unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[uint64]*Session)
}

// Len returns the current number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Info returns a human-readable multi-line summary of every live
// session, sorted by id for stable output.
func (s *Store) Info() string {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].id < sessions[j].id })

	if len(sessions) == 0 {
		return "no active sessions"
	}

	now := s.clock.Now()
	lines := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		lines = append(lines, sess.infoLine(now))
	}
	return strings.Join(lines, "\n")
}

func randomID() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, trace.Wrap(err, "generating session id")
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
