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
	"syscall"
)

// Detector reports whether a process is still running.  It must be safe
// for concurrent use.  The default implementation probes with the zero
// signal; tests may substitute their own.
type Detector interface {
	Alive(pid int) bool
}

type sigZeroDetector struct{}

func (sigZeroDetector) Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	e := syscall.Kill(pid, 0)
	// EPERM still proves the process exists.
	return e == nil || e == syscall.EPERM
}

// NewDetector returns the default zero-signal liveness probe.
func NewDetector() Detector {
	return sigZeroDetector{}
}
