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
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// DefaultStopGrace is how long a child gets to act on SIGTERM before it
// is killed outright.
const DefaultStopGrace = 100 * time.Millisecond

// LaunchRequest describes one launch of the core.  FD is an optional
// pre-opened network descriptor to hand to the child; negative means
// none.
type LaunchRequest struct {
	ConfigPath string
	FD         int
}

// Handle identifies a specific launched core instance.  The generation
// counter distinguishes it from a later instance that might reuse the
// same pid.
type Handle struct {
	PID        int
	Generation int64
	ConfigPath string
}

// Info is a point-in-time snapshot of the supervisor, for diagnostics.
// Callers must not base start/stop decisions on it; the operations
// themselves serialize on the supervisor's lock.
type Info struct {
	Running    bool      `json:"running"`
	PID        int       `json:"pid,omitempty"`
	Generation int64     `json:"generation,omitempty"`
	ConfigPath string    `json:"configPath,omitempty"`
	StartedAt  time.Time `json:"startedAt,omitempty"`
}

// Supervisor owns the single "current core process" slot.  All state
// transitions happen under one exclusive lock, so Start and Stop issued
// concurrently from different goroutines serialize; no two Starts can
// both believe they launched the only child.
//
// Multiple Supervisor instances are independent; nothing here is
// process-global.
type Supervisor struct {
	baseDir   string
	execName  string
	stopGrace time.Duration
	detector  Detector
	mlog      *MultiLogger
	elog      *Log
	logger    *log.Logger

	mx         sync.Mutex
	handle     *Handle
	cmd        *exec.Cmd
	generation int64
	started    time.Time
	dbPath     string
}

// New returns a supervisor for the core installed under baseDir.
func New(baseDir string) *Supervisor {
	s := &Supervisor{
		baseDir:   baseDir,
		execName:  DefaultExecName,
		stopGrace: DefaultStopGrace,
		detector:  NewDetector(),
	}
	s.elog = NewLog()
	s.mlog = NewMultiLogger()
	s.mlog.AddLogger(log.New(s.elog, "", 0))
	s.logger = log.New(os.Stderr, "", log.LstdFlags)
	s.mlog.AddLogger(s.logger)
	return s
}

// BaseDir returns the base directory the supervisor was created with.
func (s *Supervisor) BaseDir() string {
	return s.baseDir
}

// ExecPath returns the resolved path of the managed executable.
func (s *Supervisor) ExecPath() string {
	return ExecPathName(s.baseDir, s.execName)
}

// SetExecName overrides the executable name resolved under baseDir/bin.
// Call before the first Start.
func (s *Supervisor) SetExecName(name string) {
	if name != "" {
		s.execName = name
	}
}

// SetStopGrace adjusts the graceful-shutdown window.
func (s *Supervisor) SetStopGrace(d time.Duration) {
	if d > 0 {
		s.stopGrace = d
	}
}

// SetDetector replaces the liveness probe.  Intended for tests.
func (s *Supervisor) SetDetector(d Detector) {
	if d != nil {
		s.detector = d
	}
}

// SetLogWriter redirects diagnostic output.  The in-memory event log
// keeps receiving everything regardless.
func (s *Supervisor) SetLogWriter(w io.Writer) {
	l := log.New(w, "", log.LstdFlags)
	if s.logger != nil {
		s.mlog.DelLogger(s.logger)
	}
	s.logger = l
	s.mlog.AddLogger(l)
}

// Events exposes the in-memory event log, e.g. for the REST surface.
func (s *Supervisor) Events() *Log {
	return s.elog
}

// PrepareEnv prepares the executable for this supervisor's base
// directory and name.
func (s *Supervisor) PrepareEnv() error {
	return PrepareExec(s.ExecPath())
}

// Version queries the core binary for its version string.  It takes no
// part in the supervisor's lock and may be called whether or not a core
// is running.
func (s *Supervisor) Version() string {
	return CoreVersion(s.ExecPath())
}

// Start launches the core with the given request.  If a core is already
// tracked, the full stop sequence runs first under the same lock hold,
// so at most one child is ever live; this prevents descriptor leaks and
// double-bound ports.  On spawn failure the state stays Idle.
func (s *Supervisor) Start(req LaunchRequest) error {
	if req.ConfigPath == "" {
		return fmt.Errorf("%w: empty config path", ErrBadRequest)
	}

	s.mx.Lock()
	defer s.mx.Unlock()

	if s.handle != nil {
		if e := s.stopLocked(); e != nil {
			return e
		}
	}

	cmd := exec.Command(s.ExecPath(), "run", "-c", req.ConfigPath)
	// Give the child its own process group so the whole tree can be
	// signaled on shutdown.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	// The caller keeps ownership of its descriptor; we pass the child a
	// private duplicate (it shows up there as fd 3) and drop our copy
	// once the handoff is complete.
	var netf *os.File
	if req.FD >= 0 {
		nfd, e := syscall.Dup(req.FD)
		if e != nil {
			return fmt.Errorf("%w: dup fd %d: %v", ErrSpawn, req.FD, e)
		}
		syscall.CloseOnExec(nfd)
		netf = os.NewFile(uintptr(nfd), "netfd")
		cmd.ExtraFiles = []*os.File{netf}
	}

	// The reaper must not Wait the child until both pipes hit EOF;
	// Wait closes them, and we want the final output lines logged.
	drains := &sync.WaitGroup{}
	if stdout, e := cmd.StdoutPipe(); e == nil {
		drains.Add(1)
		go func() {
			defer drains.Done()
			s.drain(stdout, "stdout> ")
		}()
	}
	if stderr, e := cmd.StderrPipe(); e == nil {
		drains.Add(1)
		go func() {
			defer drains.Done()
			s.drain(stderr, "stderr> ")
		}()
	}

	if e := cmd.Start(); e != nil {
		// A failed exec is confined to the child; we only ever see it
		// as this error, never as a second copy of ourselves.
		if netf != nil {
			netf.Close()
		}
		return fmt.Errorf("%w: %v", ErrSpawn, e)
	}
	if netf != nil {
		netf.Close()
	}

	s.generation++
	s.handle = &Handle{
		PID:        cmd.Process.Pid,
		Generation: s.generation,
		ConfigPath: req.ConfigPath,
	}
	s.cmd = cmd
	s.started = time.Now()
	go s.reap(cmd, s.generation, drains)
	s.logf("Started core pid %d (generation %d, config %s)",
		cmd.Process.Pid, s.generation, req.ConfigPath)
	return nil
}

// Stop performs the graduated shutdown: SIGTERM, a bounded grace wait,
// then SIGKILL if the child is still around.  Stopping an idle
// supervisor succeeds without sending anything.
func (s *Supervisor) Stop() error {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.stopLocked()
}

// Status returns a snapshot of the tracked core, or a zero Info when
// idle.
func (s *Supervisor) Status() Info {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.handle == nil {
		return Info{}
	}
	return Info{
		Running:    true,
		PID:        s.handle.PID,
		Generation: s.handle.Generation,
		ConfigPath: s.handle.ConfigPath,
		StartedAt:  s.started,
	}
}

// UpdateDatabase records a replacement geo database for the core.
// Fetching the file is the host's business; the path is validated and
// remembered so a later launch can pick it up.
func (s *Supervisor) UpdateDatabase(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty database path", ErrBadRequest)
	}
	if _, e := os.Stat(path); e != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	s.mx.Lock()
	s.dbPath = path
	s.mx.Unlock()
	s.logf("Recorded database update: %s", path)
	return nil
}

// DatabasePath returns the most recently recorded database path.
func (s *Supervisor) DatabasePath() string {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.dbPath
}

// stopLocked is the stop sequence proper.  Callers must hold mx.
func (s *Supervisor) stopLocked() error {
	if s.handle == nil {
		return nil
	}
	pid := s.handle.PID

	if e := syscall.Kill(-pid, syscall.SIGTERM); e != nil {
		if e == syscall.ESRCH {
			// Already gone; treat as stopped.
			s.logf("Core pid %d already gone", pid)
			s.clearLocked()
			return nil
		}
		return fmt.Errorf("%w: pid %d: %v", ErrKill, pid, e)
	}

	deadline := time.Now().Add(s.stopGrace)
	for s.detector.Alive(pid) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if s.detector.Alive(pid) {
		// Best effort; not re-verified.  A truly unkillable process
		// becomes untracked rather than wedging the supervisor.
		syscall.Kill(-pid, syscall.SIGKILL)
		s.logf("Core pid %d killed after %v grace", pid, s.stopGrace)
	} else {
		s.logf("Core pid %d stopped", pid)
	}
	s.clearLocked()
	return nil
}

// clearLocked resets the slot to Idle.  Callers must hold mx.
func (s *Supervisor) clearLocked() {
	s.handle = nil
	s.cmd = nil
}

// reap waits the child so it never lingers as a zombie, and records an
// exit that was not driven by Stop.  The generation guard keeps a stale
// exit from clearing a newer handle.
func (s *Supervisor) reap(cmd *exec.Cmd, gen int64, drains *sync.WaitGroup) {
	drains.Wait()
	e := cmd.Wait()
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.handle == nil || s.handle.Generation != gen {
		return
	}
	if e != nil {
		s.logf("Core pid %d exited: %v", s.handle.PID, e)
	} else {
		s.logf("Core pid %d exited", s.handle.PID)
	}
	s.clearLocked()
}

func (s *Supervisor) drain(r io.ReadCloser, prefix string) {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if len(line) != 0 {
			s.logf("%s%s", prefix, strings.Trim(line, "\n"))
		}
		if err != nil {
			return
		}
	}
}

func (s *Supervisor) logf(format string, v ...interface{}) {
	s.mlog.Logger().Printf(format, v...)
}
