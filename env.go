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
	"fmt"
	"os"
)

// execMode is re-asserted on every prepare.  The host only drops the
// binary in place; it does not mark it runnable.
const execMode = os.FileMode(0755)

// PrepareEnv verifies that the managed executable exists under baseDir
// and re-asserts its execute permission.  It never creates the binary;
// placing it there (e.g. extracting it from a bundled asset) is the
// host's responsibility.  Idempotent.
func PrepareEnv(baseDir string) error {
	return PrepareExec(ExecPath(baseDir))
}

// PrepareExec is PrepareEnv for an already-resolved executable path.
func PrepareExec(path string) error {
	fi, e := os.Stat(path)
	if e != nil {
		if os.IsNotExist(e) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		// The binary may well be there; we just cannot get at it.
		return fmt.Errorf("%w: %v", ErrPermission, e)
	}
	if fi.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if e := os.Chmod(path, execMode); e != nil {
		return fmt.Errorf("%w: %v", ErrPermission, e)
	}
	return nil
}
