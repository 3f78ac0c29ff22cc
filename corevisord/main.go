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

// Command corevisord supervises a proxy core executable and exposes it
// over a REST API.  The core itself is started by a client request, not
// at daemon boot.
//
// The flags are
//
//	-a <address>	- listen address
//	-d <dir>	- core base directory (binary at <dir>/bin/core)
//	-e <name>	- core executable name
//	-c <file>	- YAML configuration file; flags override it
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/corevisor/corevisor"
	"github.com/corevisor/corevisor/rest"
)

var addr string = "127.0.0.1:8421"
var dir string = "."
var execName string = ""
var cfgFile string = ""

func main() {
	flag.StringVar(&addr, "a", addr, "listen address")
	flag.StringVar(&dir, "d", dir, "core base directory")
	flag.StringVar(&execName, "e", execName, "core executable name")
	flag.StringVar(&cfgFile, "c", cfgFile, "configuration file")
	flag.Parse()

	var cfg *corevisor.Config
	if cfgFile != "" {
		var e error
		if cfg, e = corevisor.LoadConfig(cfgFile); e != nil {
			log.Fatalf("Failed to load config %s: %v", cfgFile, e)
		}
	}

	// File values apply first, explicit flags win.
	if cfg != nil {
		if cfg.Listen != "" {
			addr = cfg.Listen
		}
		if cfg.BaseDir != "" {
			dir = cfg.BaseDir
		}
		if cfg.ExecName != "" {
			execName = cfg.ExecName
		}
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "a":
				addr = f.Value.String()
			case "d":
				dir = f.Value.String()
			case "e":
				execName = f.Value.String()
			}
		})
	}

	s := corevisor.New(dir)
	s.SetExecName(execName)
	s.SetStopGrace(cfg.Grace())
	if e := s.PrepareEnv(); e != nil {
		log.Fatalf("Failed to prepare environment: %v", e)
	}

	h := rest.NewHandler(s)
	if cfg != nil && cfg.AuthUser != "" {
		h.SetAuth(cfg.AuthUser, []byte(cfg.AuthHash))
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		log.Fatal(http.ListenAndServe(addr, h))
	}()

	// Take the core down with us on a termination signal.
	<-sigs
	if e := s.Stop(); e != nil {
		log.Printf("Failed to stop core: %v", e)
		os.Exit(1)
	}
	os.Exit(0)
}
