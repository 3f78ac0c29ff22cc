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
	"path/filepath"
)

// DefaultExecName is the file name of the managed executable under
// <baseDir>/bin.
const DefaultExecName = "core"

// ExecPath resolves the on-disk location of the managed executable for
// the given base directory.  Pure composition, no I/O; cheap to call
// repeatedly.
func ExecPath(baseDir string) string {
	return ExecPathName(baseDir, DefaultExecName)
}

// ExecPathName is ExecPath with an explicit executable name.
func ExecPathName(baseDir, name string) string {
	return filepath.Join(baseDir, "bin", name)
}
