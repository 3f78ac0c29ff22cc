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

// Command corevisor implements a client application that communicates
// with corevisord.  It uses subcommands.
//
// The flags are
//
//	-a <address>	- daemon address, default http://127.0.0.1:8421
//	-u <user:pass>	- user name & password for basic auth
//
// Subcommands are
//
//	status			- show the core's state and version
//	version			- show just the core's version
//	start <config> [fd]	- start the core with a config file
//	stop			- stop the core
//	update <path>		- record a new database file
//	log			- dump the daemon's event log
//	ui			- interactive monitor (the default)
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/corevisor/corevisor/rest"
)

var addr string = "http://127.0.0.1:8421"
var auth string = ""

func usage() {
	log.Fatalf("Usage: %s [-a <address>] [-u <user:pass>] <subcommand>",
		os.Args[0])
}

func showStatus(info *rest.CoreInfo) {
	if !info.Running {
		fmt.Printf("core       stopped   version %s\n", info.Version)
		return
	}
	d := time.Since(info.StartedAt)
	// second resolution is plenty for printing
	d -= d % time.Second
	fmt.Printf("core       running   pid %d   up %s   version %s\n",
		info.PID, d.String(), info.Version)
	fmt.Printf("config     %s\n", info.ConfigPath)
}

func main() {
	flag.StringVar(&addr, "a", addr, "corevisord address")
	flag.StringVar(&auth, "u", auth, "user:pass authentication")
	flag.Parse()

	client := rest.NewClient(nil, addr)
	if auth != "" {
		a := strings.SplitN(auth, ":", 2)
		if len(a) != 2 {
			log.Fatalf("Bad user:pass supplied")
		}
		client.SetAuth(a[0], a[1])
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"ui"}
	}

	switch args[0] {
	case "status":
		if len(args) != 1 {
			usage()
		}
		info, e := client.Status()
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		showStatus(info)
	case "version":
		if len(args) != 1 {
			usage()
		}
		info, e := client.Status()
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		fmt.Println(info.Version)
	case "start":
		if len(args) != 2 && len(args) != 3 {
			usage()
		}
		fd := -1
		if len(args) == 3 {
			var e error
			if fd, e = strconv.Atoi(args[2]); e != nil {
				usage()
			}
		}
		if e := client.StartCore(args[1], fd); e != nil {
			log.Fatalf("Failed: %v", e)
		}
	case "stop":
		if len(args) != 1 {
			usage()
		}
		if e := client.StopCore(); e != nil {
			log.Fatalf("Failed: %v", e)
		}
	case "update":
		if len(args) != 2 {
			usage()
		}
		if e := client.UpdateDatabase(args[1]); e != nil {
			log.Fatalf("Failed: %v", e)
		}
	case "log":
		if len(args) != 1 {
			usage()
		}
		info, e := client.GetLog()
		if e != nil {
			log.Fatalf("Failed: %v", e)
		}
		if info != nil {
			for _, rec := range info.Records {
				fmt.Printf("%s %s\n",
					rec.Time.Format(time.StampMilli), rec.Text)
			}
		}
	case "ui":
		doUI(client, addr)
	default:
		usage()
	}
}
