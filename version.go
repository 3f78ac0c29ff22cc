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
	"bufio"
	"os/exec"
	"strings"
	"time"
)

// VersionUnknown is reported when the core version cannot be determined.
const VersionUnknown = "Unknown"

const versionTimeout = 5 * time.Second

// CoreVersion runs the core in query mode and returns the first line of
// its standard output, trimmed of the trailing newline.  It never fails;
// callers get VersionUnknown when the path is unset, the binary won't
// run, or it prints nothing.
func CoreVersion(execPath string) string {
	if execPath == "" {
		return VersionUnknown
	}
	cmd := exec.Command(execPath, "--version")
	stdout, e := cmd.StdoutPipe()
	if e != nil {
		return VersionUnknown
	}
	if e := cmd.Start(); e != nil {
		return VersionUnknown
	}
	// A wedged binary must not hang the caller.
	timer := time.AfterFunc(versionTimeout, func() {
		cmd.Process.Kill()
	})
	line, _ := bufio.NewReader(stdout).ReadString('\n')
	cmd.Wait()
	timer.Stop()

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return VersionUnknown
	}
	return line
}
