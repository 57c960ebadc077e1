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

// Package session implements short-lived authenticated sessions created
// and tracked by the Agent's RPC surface.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rapidscada/agent/lib/instance"
)

// Session is a short-lived authenticated context keyed by a random
// 64-bit id. It transitions unauthenticated -> authenticated via SetUser,
// and back via ClearUser.
type Session struct {
	mu sync.Mutex

	id           uint64
	clientIP     string
	loggedOn     bool
	username     string
	instance     *instance.Instance
	lastActivity time.Time
}

// ID returns the session's 64-bit identifier.
func (s *Session) ID() uint64 {
	return s.id
}

// ClientIP returns the informational client address recorded at
// creation.
func (s *Session) ClientIP() string {
	return s.clientIP
}

// SetUser binds an authenticated username and Instance to the session.
func (s *Session) SetUser(username string, inst *instance.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedOn = true
	s.username = username
	s.instance = inst
}

// ClearUser resets the session to unauthenticated, clearing any prior
// user binding. Called at the start of every Login attempt.
func (s *Session) ClearUser() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedOn = false
	s.username = ""
	s.instance = nil
}

// IsLoggedOn reports whether the session has successfully authenticated.
func (s *Session) IsLoggedOn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedOn
}

// Username returns the authenticated username, or "" if not logged on.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Instance returns the bound Instance, or nil if not logged on.
func (s *Session) Instance() *instance.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instance
}

// touch updates lastActivity to now. Called by the store on every
// resolved access.
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity)
}

// infoLine renders the single-line summary used by Store.Info.
func (s *Session) infoLine(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := "(not logged on)"
	if s.loggedOn {
		user = s.username
	}
	return fmt.Sprintf("session %d: ip=%s user=%s last_activity=%s",
		s.id, s.clientIP, user, s.lastActivity.Local().Format(time.RFC3339))
}
