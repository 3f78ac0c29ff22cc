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

// Package corevisor supervises an externally supplied proxy core
// executable.  It prepares the binary's runtime environment, launches it
// as a child process (optionally handing it a pre-opened network
// descriptor), tracks exactly one live child at a time, performs a
// graduated shutdown, and answers version queries.
//
// The supervisor is deliberately small; the core's protocol handling and
// configuration semantics are its own business, and obtaining the binary
// and its configuration file is the host's.  Hosts may embed a Supervisor
// directly, flatten it through a Bridge into plain status codes, or run
// corevisord and drive it over the REST API.
//
// This package targets POSIX systems; process control is built on signal
// delivery and process groups.
package corevisor
