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

// Package instance operates on one managed site's file tree: user
// validation, service control, status reads, and selective pack/unpack
// of configuration archives.
package instance

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"

	"github.com/rapidscada/agent/constants"
	"github.com/rapidscada/agent/lib/authn"
	"github.com/rapidscada/agent/lib/layout"
)

// ServiceKind identifies one of the site's long-running processes.
type ServiceKind int

const (
	ServiceServer ServiceKind = iota
	ServiceComm
)

func (k ServiceKind) String() string {
	switch k {
	case ServiceServer:
		return "Server"
	case ServiceComm:
		return "Comm"
	default:
		return "Unknown"
	}
}

// ServiceCommand is a control action applied to a ServiceKind.
type ServiceCommand int

const (
	CommandStart ServiceCommand = iota
	CommandStop
	CommandRestart
)

// ServiceStatus is the parsed content of a service's status file.
type ServiceStatus int

const (
	StatusUndefined ServiceStatus = iota
	StatusNormal
	StatusStopped
	StatusError
)

func (s ServiceStatus) String() string {
	switch s {
	case StatusNormal:
		return "Normal"
	case StatusStopped:
		return "Stopped"
	case StatusError:
		return "Error"
	default:
		return "Undefined"
	}
}

// Instance operates on one site's directory tree. Every operation is
// executed under the instance's shared lock, so concurrent mutating
// calls on the same Instance are serialized deterministically in arrival
// order; different Instances proceed in parallel.
type Instance struct {
	name string
	root string
	lock *sync.Mutex
	log  *logrus.Entry
	auth authn.Authenticator

	attemptsMu sync.Mutex
	attempts   int
}

// New constructs an Instance. lock is shared by every Instance handle for
// the same name, handed out by the InstanceRegistry.
func New(name, root string, lock *sync.Mutex, auth authn.Authenticator) *Instance {
	if auth == nil {
		auth = authn.DenyAll{}
	}
	return &Instance{
		name: name,
		root: root,
		lock: lock,
		auth: auth,
		log:  logrus.WithFields(logrus.Fields{trace.Component: constants.ComponentInstance, "instance": name}),
	}
}

// Name returns the instance's registry key.
func (i *Instance) Name() string { return i.name }

// Root returns the instance's absolute root directory.
func (i *Instance) Root() string { return i.root }

func (i *Instance) withLock(fn func() error) error {
	i.lock.Lock()
	defer i.lock.Unlock()
	return fn()
}

// ValidateUser checks username/password, either via the configured
// external Authenticator or by falling back to BaseDAT/user.dat, and
// requires the matched user's role to be the well-known Application role.
// After MaxValidateUserAttempts consecutive failures, further attempts
// fail fast until a success resets the counter (spec §4.4).
func (i *Instance) ValidateUser(username, password string) (ok bool, errMsg string) {
	_ = i.withLock(func() error {
		ok, errMsg = i.validateUserLocked(username, password)
		return nil
	})
	return ok, errMsg
}

func (i *Instance) validateUserLocked(username, password string) (bool, string) {
	i.attemptsMu.Lock()
	attempts := i.attempts
	i.attemptsMu.Unlock()

	if attempts >= constants.MaxValidateUserAttempts {
		return false, "number of login attempts exceeded"
	}

	if authOK, roleID, handled := i.auth.Authenticate(username, password); handled {
		if authOK && roleID == applicationRoleID {
			i.resetAttempts()
			return true, ""
		}
		i.recordFailure()
		return false, "invalid username or password"
	}

	records, err := ReadUserDat(filepath.Join(i.root, layout.Path(layout.PartBase, layout.FolderRoot), "user.dat"))
	if err != nil {
		i.log.WithError(err).Warn("failed to read user database")
		i.recordFailure()
		return false, "invalid username or password"
	}

	rec, found := FindUserByName(records, username)
	if !found || rec.Password != password || rec.RoleID != applicationRoleID {
		i.recordFailure()
		return false, "invalid username or password"
	}

	i.resetAttempts()
	return true, ""
}

// roleIDs maps the well-known role names in constants to the numeric ids
// user.dat actually stores (spec §4.4); user.dat has no concept of role
// names, so this table is the one place that translation happens.
var roleIDs = map[string]int{
	constants.ApplicationRole: 2,
}

// applicationRoleID is the well-known numeric id of the "Application"
// role referenced by spec §4.4.
var applicationRoleID = roleIDs[constants.ApplicationRole]

func (i *Instance) recordFailure() {
	i.attemptsMu.Lock()
	i.attempts++
	i.attemptsMu.Unlock()
}

func (i *Instance) resetAttempts() {
	i.attemptsMu.Lock()
	i.attempts = 0
	i.attemptsMu.Unlock()
}

// serviceCmdFile maps command to the batch/shell file name under a
// service's Cmd folder, using the host-appropriate extension.
func serviceCmdFile(command ServiceCommand) string {
	ext := ".sh"
	if runtime.GOOS == "windows" {
		ext = ".bat"
	}
	switch command {
	case CommandStart:
		return "svc_start" + ext
	case CommandStop:
		return "svc_stop" + ext
	default:
		return "svc_restart" + ext
	}
}

func servicePart(kind ServiceKind) layout.ConfigPart {
	if kind == ServiceComm {
		return layout.PartComm
	}
	return layout.PartServer
}

// ControlService launches the batch/shell file for (kind, command) in a
// detached process with no shell interpolation beyond the file path, and
// returns success when the process was started, not when it completed
// (spec §4.4, §9 Open Question: no polling confirmation is added).
func (i *Instance) ControlService(kind ServiceKind, command ServiceCommand) (ok bool, errMsg string) {
	_ = i.withLock(func() error {
		ok, errMsg = i.controlServiceLocked(kind, command)
		return nil
	})
	return ok, errMsg
}

func (i *Instance) controlServiceLocked(kind ServiceKind, command ServiceCommand) (bool, string) {
	cmdDir := filepath.Join(i.root, layout.Path(servicePart(kind), layout.FolderCmd))
	cmdFile := filepath.Join(cmdDir, serviceCmdFile(command))

	if _, err := os.Stat(cmdFile); err != nil {
		i.log.Warnf("service control file not found: %s", cmdFile)
		return false, "service control file not found"
	}

	cmd := exec.Command(cmdFile)
	detach(cmd)
	if err := cmd.Start(); err != nil {
		i.log.WithError(err).Warn("failed to start service control process")
		return false, "failed to start service control process"
	}
	// The process is intentionally not waited on: success means started,
	// not completed.
	go func() { _ = cmd.Wait() }()
	return true, ""
}

func serviceStatusFile(kind ServiceKind) string {
	if kind == ServiceComm {
		return "ScadaCommSvc.txt"
	}
	return "ScadaServerSvc.txt"
}

// GetServiceStatus reads the service's status text file under
// <kind>/Log/ and parses its "State"/"Состояние" line. A missing file
// yields (true, Undefined), not an error (spec §4.4).
func (i *Instance) GetServiceStatus(kind ServiceKind) (ok bool, status ServiceStatus) {
	_ = i.withLock(func() error {
		ok, status = i.getServiceStatusLocked(kind)
		return nil
	})
	return ok, status
}

func (i *Instance) getServiceStatusLocked(kind ServiceKind) (bool, ServiceStatus) {
	path := filepath.Join(i.root, layout.Path(servicePart(kind), layout.FolderLog), serviceStatusFile(kind))

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return true, StatusUndefined
	}
	if err != nil {
		i.log.WithError(err).Warn("failed to read service status file")
		return false, StatusUndefined
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "State") && !strings.HasPrefix(trimmed, "Состояние") {
			continue
		}
		idx := strings.IndexRune(trimmed, ':')
		if idx < 0 {
			continue
		}
		value := strings.ToLower(strings.TrimSpace(trimmed[idx+1:]))
		switch value {
		case "normal", "норма":
			return true, StatusNormal
		case "stopped", "остановлен":
			return true, StatusStopped
		case "error", "ошибка":
			return true, StatusError
		default:
			return true, StatusUndefined
		}
	}
	return true, StatusUndefined
}

// GetAvailableConfig returns the union of ConfigParts whose root
// directory exists under the instance root.
func (i *Instance) GetAvailableConfig() layout.ConfigPart {
	var parts layout.ConfigPart
	_ = i.withLock(func() error {
		parts = availableParts(i.root)
		return nil
	})
	return parts
}

// PackConfig creates a ZIP archive at destFile for the selected parts,
// honoring options.Ignore (spec §4.4).
func (i *Instance) PackConfig(destFile string, options ConfigOptions) error {
	var err error
	_ = i.withLock(func() error {
		err = packConfig(i.root, destFile, options)
		return nil
	})
	return err
}

// UnpackConfig sweeps the working set and extracts srcFile's selected
// parts into the instance root (spec §4.4).
func (i *Instance) UnpackConfig(srcFile string, options ConfigOptions) error {
	var err error
	_ = i.withLock(func() error {
		err = unpackConfig(i.root, srcFile, options)
		return nil
	})
	return err
}

// Browse returns a non-recursive listing of immediate children under the
// resolved absolute directory for rel.
func (i *Instance) Browse(rel layout.RelPath) (dirs, files []string, err error) {
	_ = i.withLock(func() error {
		dirs, files, err = i.browseLocked(rel)
		return nil
	})
	return dirs, files, err
}

func (i *Instance) browseLocked(rel layout.RelPath) ([]string, []string, error) {
	abs, err := layout.AbsPath(i.root, rel)
	if err != nil {
		return nil, nil, trace.Wrap(err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, nil, trace.Wrap(err)
	}

	var dirs, files []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		} else {
			files = append(files, e.Name())
		}
	}
	return dirs, files, nil
}

// GetAbsPath composes the instance root, DirectoryLayout path, and tail
// for rel, rejecting any tail that escapes the instance root.
func (i *Instance) GetAbsPath(rel layout.RelPath) (string, error) {
	return layout.AbsPath(i.root, rel)
}
