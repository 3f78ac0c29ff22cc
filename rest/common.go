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

package rest

import (
	"time"
)

const (
	mimeJson = "application/json; charset=UTF-8"

	// Long-poll headers understood by the log endpoint.
	PollEtagHeader = "X-Corevisor-Etag"
	PollTimeHeader = "X-Corevisor-Wait"
)

var ok struct{}

// CoreInfo describes the supervised core process.
type CoreInfo struct {
	Running    bool      `json:"running"`
	PID        int       `json:"pid,omitempty"`
	Generation int64     `json:"generation,omitempty"`
	ConfigPath string    `json:"configPath,omitempty"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
	Version    string    `json:"version"`
}

// StartRequest is the body of POST /core/start.  FD is an optional
// pre-opened descriptor number; absent means none.  It is only
// meaningful when the daemon runs in the same process space as whatever
// opened the descriptor.
type StartRequest struct {
	ConfigPath string `json:"configPath"`
	FD         *int   `json:"fd,omitempty"`
}

// UpdateRequest is the body of POST /core/update.
type UpdateRequest struct {
	Path string `json:"path"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}
