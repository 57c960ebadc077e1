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

// Package authn models the pluggable external authenticator described in
// spec §9 ("External AD authentication"). The Active Directory module
// itself is out of scope; only the interface Instance.ValidateUser
// consumes is specified here, with a default-deny stub so the core
// always has a concrete collaborator.
package authn

// Authenticator validates credentials against an external directory. If
// Handled is false, the caller must fall back to the local user.dat
// check; Handled true means Authenticator owns the verdict regardless of
// OK.
type Authenticator interface {
	Authenticate(username, password string) (ok bool, roleID int, handled bool)
}

// DenyAll is the default Authenticator: it never handles a request, so
// Instance.ValidateUser always falls back to user.dat.
type DenyAll struct{}

func (DenyAll) Authenticate(string, string) (bool, int, bool) {
	return false, 0, false
}
