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

// Package agentloop implements the Agent's single background worker: it
// ticks session sweep, temp-file garbage collection, and info-file
// writes on independent schedules (spec §4.6).
package agentloop

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/rapidscada/agent/constants"
)

// SessionSweeper is the subset of session.Store the loop depends on.
type SessionSweeper interface {
	Sweep() int
	Clear()
	Info() string
}

// Config configures an AgentLoop.
type Config struct {
	Sessions SessionSweeper
	TempDir  string
	InfoFile string
	Version  string
	Clock    clockwork.Clock
	Log      *logrus.Entry
}

func (c *Config) checkAndSetDefaults() error {
	if c.Sessions == nil {
		return trace.BadParameter("Sessions must be provided")
	}
	if c.TempDir == "" {
		return trace.BadParameter("TempDir must be provided")
	}
	if c.InfoFile == "" {
		return trace.BadParameter("InfoFile must be provided")
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	if c.Log == nil {
		c.Log = logrus.WithField(trace.Component, constants.ComponentAgentLoop)
	}
	return nil
}

// Loop is the Agent's background worker.
type Loop struct {
	cfg       Config
	startTime time.Time

	mu        sync.Mutex
	workState WorkState

	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs a Loop. Call Start to begin ticking.
func New(cfg Config) (*Loop, error) {
	if err := cfg.checkAndSetDefaults(); err != nil {
		return nil, trace.Wrap(err)
	}
	return &Loop{
		cfg:       cfg,
		startTime: cfg.Clock.Now(),
		workState: StateNormal,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}, nil
}

// Start runs the loop in a background goroutine.
func (l *Loop) Start() {
	go l.run()
}

func (l *Loop) run() {
	defer close(l.doneCh)

	sessTicker := l.cfg.Clock.NewTicker(constants.SessProcPeriod)
	defer sessTicker.Stop()
	tempTicker := l.cfg.Clock.NewTicker(constants.DelTempFilePeriod)
	defer tempTicker.Stop()
	infoTicker := l.cfg.Clock.NewTicker(constants.WriteInfoPeriod)
	defer infoTicker.Stop()

	for {
		select {
		case <-l.stopCh:
			l.shutdown()
			return
		case <-sessTicker.Chan():
			l.cfg.Sessions.Sweep()
		case <-tempTicker.Chan():
			l.deleteStaleTempFiles(constants.TempFileLifetime)
		case <-infoTicker.Chan():
			l.writeInfo()
		}
	}
}

func (l *Loop) shutdown() {
	l.cfg.Sessions.Clear()
	l.deleteStaleTempFiles(0) // unconditional
	l.setWorkState(StateTerminated)
	l.writeInfo()
}

// Stop signals the loop to clear sessions, delete all temp files
// unconditionally, write a final Terminated snapshot, and exit. It waits
// up to WaitForStop for the worker to cooperate before returning anyway.
func (l *Loop) Stop() {
	close(l.stopCh)
	select {
	case <-l.doneCh:
	case <-time.After(constants.WaitForStop):
		l.cfg.Log.Warn("agent loop did not stop cooperatively within the deadline")
	}
}

func (l *Loop) setWorkState(s WorkState) {
	l.mu.Lock()
	l.workState = s
	l.mu.Unlock()
}

func (l *Loop) getWorkState() WorkState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.workState
}

// deleteStaleTempFiles removes every file under TempDir whose age
// exceeds maxAge. maxAge of 0 deletes unconditionally (used on Stop).
func (l *Loop) deleteStaleTempFiles(maxAge time.Duration) {
	entries, err := os.ReadDir(l.cfg.TempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			l.cfg.Log.WithError(err).Warn("failed to scan temp directory")
			l.setWorkState(StateError)
		}
		return
	}

	now := l.cfg.Clock.Now()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if maxAge > 0 && now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		path := filepath.Join(l.cfg.TempDir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			l.cfg.Log.WithError(err).Warnf("failed to delete stale temp file %s", path)
		}
	}
}

func (l *Loop) writeInfo() {
	snapshot := InfoSnapshot{
		StartTime: l.startTime,
		Now:       l.cfg.Clock.Now(),
		WorkState: l.getWorkState(),
		Version:   l.cfg.Version,
		Sessions:  l.cfg.Sessions.Info(),
	}
	if err := writeInfoFile(l.cfg.InfoFile, snapshot); err != nil {
		l.cfg.Log.WithError(err).Warn("failed to write info file")
		l.setWorkState(StateError)
	}
}
