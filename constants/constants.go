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

// Package constants holds module-wide constants shared by the Agent
// server, its RPC surface, and the administrator-side client transport.
package constants

import "time"

// Version is the agent's reported software version, written into the info
// file and printed by the --version flag of both commands.
const Version = "5.0.0"

// Component names used as the trace.Component field on log entries.
const (
	ComponentRegistry  = "instance_registry"
	ComponentInstance  = "instance"
	ComponentSession   = "session_store"
	ComponentAgentLoop = "agent_loop"
	ComponentRPCServer = "rpc_server"
	ComponentRPCClient = "rpc_client"
	ComponentCrypto    = "crypto"
)

// Secret key size, in bytes, shared by CryptoSupport and AgentSettings.
const SecretKeySize = 16

// Session store tunables (spec §4.5).
const (
	MaxSessions   = 100
	MaxIDAttempts = 100
	SessionTTL    = time.Minute
)

// Instance tunables (spec §4.4).
const MaxValidateUserAttempts = 3

// AgentLoop tick periods and temp file lifetime (spec §4.6).
const (
	SessProcPeriod    = 5 * time.Second
	DelTempFilePeriod = 60 * time.Second
	WriteInfoPeriod   = time.Second
	TempFileLifetime  = 10 * time.Minute
	WaitForStop       = 10 * time.Second
)

// ApplicationRole is the well-known user.dat role that ValidateUser
// requires (spec §4.4).
const ApplicationRole = "Application"
