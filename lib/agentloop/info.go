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

package agentloop

import (
	"fmt"
	"os"
	"time"

	"github.com/gravitational/trace"
)

// WorkState summarizes the loop's health for operators reading the info
// file; no program reads it back (spec §4.6, §6).
type WorkState int

const (
	StateUndefined WorkState = iota
	StateNormal
	StateError
	StateTerminated
)

func (s WorkState) String() string {
	switch s {
	case StateNormal:
		return "Normal"
	case StateError:
		return "Error"
	case StateTerminated:
		return "Terminated"
	default:
		return "Undefined"
	}
}

// InfoSnapshot is the structured content written to the info file every
// WriteInfoPeriod.
type InfoSnapshot struct {
	StartTime time.Time
	Now       time.Time
	WorkState WorkState
	Version   string
	Sessions  string
}

// Uptime returns the duration since StartTime as of Now.
func (s InfoSnapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

func (s InfoSnapshot) render() string {
	return fmt.Sprintf(
		"Rapid SCADA Agent %s\nStart time : %s\nUptime     : %s\nState      : %s\nGenerated  : %s\n\n%s\n",
		s.Version,
		s.StartTime.Local().Format(time.RFC3339),
		s.Uptime().Round(time.Second),
		s.WorkState,
		s.Now.Local().Format(time.RFC3339),
		s.Sessions,
	)
}

// writeInfoFile overwrites path with snapshot's rendering, UTF-8, as
// spec §6 requires.
func writeInfoFile(path string, snapshot InfoSnapshot) error {
	if err := os.WriteFile(path, []byte(snapshot.render()), 0o644); err != nil {
		return trace.Wrap(err, "writing info file")
	}
	return nil
}
