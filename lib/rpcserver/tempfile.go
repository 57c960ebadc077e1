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

package rpcserver

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
)

// tempFileName returns a name-prefix-counter-suffixed path under dir, e.g.
// "download-config-3.zip". The counter only needs to be unique within this
// process's lifetime; collisions across restarts are harmless because
// AgentLoop eventually deletes every file under the temp directory.
func (s *Server) tempFileName(dir, prefix, ext string) string {
	n := atomic.AddUint64(&s.tempFileCounter, 1)
	return filepath.Join(dir, fmt.Sprintf("%s-%d.%s", prefix, n, ext))
}
