// Copyright 2026 The Corevisor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package corevisor

import (
	"sync"
)

// Status codes handed across the host boundary.  The host sees only
// success or failure; diagnostic detail goes to the event log.
const (
	StatusOK   = 0
	StatusFail = -1
)

// Bridge flattens the supervisor's typed errors into the two-valued
// status codes a managed-runtime host expects.  InitEnvironment binds a
// fresh supervisor; the remaining calls fail until it has succeeded
// once.
type Bridge struct {
	mx  sync.Mutex
	sup *Supervisor
}

// NewBridge returns an unbound bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// InitEnvironment prepares the executable under baseDir and binds a
// supervisor to it.  Re-initializing stops any core still running under
// the previous binding; a child must never outlive its supervisor.
func (b *Bridge) InitEnvironment(baseDir string) int {
	sup := New(baseDir)
	if e := sup.PrepareEnv(); e != nil {
		sup.logf("InitEnvironment: %v", e)
		return StatusFail
	}
	b.mx.Lock()
	prev := b.sup
	b.sup = sup
	b.mx.Unlock()
	if prev != nil {
		if e := prev.Stop(); e != nil {
			prev.logf("InitEnvironment: stopping previous core: %v", e)
		}
	}
	return StatusOK
}

// Supervisor returns the bound supervisor, or nil before a successful
// InitEnvironment.
func (b *Bridge) Supervisor() *Supervisor {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.sup
}

// Start launches the core with the given config path and optional
// network descriptor (negative means none).
func (b *Bridge) Start(configPath string, fd int) int {
	sup := b.Supervisor()
	if sup == nil {
		return StatusFail
	}
	if e := sup.Start(LaunchRequest{ConfigPath: configPath, FD: fd}); e != nil {
		sup.logf("Start: %v", e)
		return StatusFail
	}
	return StatusOK
}

// Stop tears the core down.  Stopping an already-stopped core succeeds.
func (b *Bridge) Stop() int {
	sup := b.Supervisor()
	if sup == nil {
		return StatusFail
	}
	if e := sup.Stop(); e != nil {
		sup.logf("Stop: %v", e)
		return StatusFail
	}
	return StatusOK
}

// GetVersion reports the core's version string, or VersionUnknown.
func (b *Bridge) GetVersion() string {
	sup := b.Supervisor()
	if sup == nil {
		return VersionUnknown
	}
	return sup.Version()
}

// UpdateDatabase acknowledges a database update request.  The file must
// already be on disk; fetching it is out of scope here.
func (b *Bridge) UpdateDatabase(path string) int {
	sup := b.Supervisor()
	if sup == nil {
		return StatusFail
	}
	if e := sup.UpdateDatabase(path); e != nil {
		sup.logf("UpdateDatabase: %v", e)
		return StatusFail
	}
	return StatusOK
}
