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

// +build darwin dragonfly freebsd linux netbsd openbsd solaris

package corevisor

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBridge(t *testing.T) {
	Convey("Given a prepared bridge", t, func() {
		base, cfg := mkBase(t)
		b := NewBridge()
		So(b.InitEnvironment(base), ShouldEqual, StatusOK)
		b.Supervisor().SetLogWriter(&testLog{t: t})

		Convey("Start and stop report status codes", func() {
			So(b.Start(cfg, -1), ShouldEqual, StatusOK)
			So(b.Stop(), ShouldEqual, StatusOK)

			Convey("And stop stays OK when idle", func() {
				So(b.Stop(), ShouldEqual, StatusOK)
			})
		})

		Convey("Starting with an empty config fails", func() {
			So(b.Start("", -1), ShouldEqual, StatusFail)
		})

		Convey("The version comes from the managed binary", func() {
			So(b.GetVersion(), ShouldEqual,
				"FakeCore 1.2.3 (test build)")
		})

		Convey("Database updates are acknowledged when the file exists", func() {
			db := filepath.Join(base, "geo.dat")
			So(ioutil.WriteFile(db, []byte("data"), 0644), ShouldBeNil)
			So(b.UpdateDatabase(db), ShouldEqual, StatusOK)
			So(b.Supervisor().DatabasePath(), ShouldEqual, db)
		})

		Convey("Missing database files are rejected", func() {
			So(b.UpdateDatabase(filepath.Join(base, "nope.dat")),
				ShouldEqual, StatusFail)
			So(b.UpdateDatabase(""), ShouldEqual, StatusFail)
		})

		Convey("Re-initializing stops the previous core", func() {
			So(b.Start(cfg, -1), ShouldEqual, StatusOK)
			pid := b.Supervisor().Status().PID

			base2, cfg2 := mkBase(t)
			So(b.InitEnvironment(base2), ShouldEqual, StatusOK)
			So(b.Supervisor().BaseDir(), ShouldEqual, base2)

			time.Sleep(100 * time.Millisecond)
			So(gone(pid), ShouldBeTrue)

			Convey("And the new binding still works", func() {
				So(b.Start(cfg2, -1), ShouldEqual, StatusOK)
				So(b.Stop(), ShouldEqual, StatusOK)
			})
		})
	})

	Convey("An uninitialized bridge fails everything but version", t, func() {
		b := NewBridge()
		So(b.Start("/tmp/cfg.json", -1), ShouldEqual, StatusFail)
		So(b.Stop(), ShouldEqual, StatusFail)
		So(b.UpdateDatabase("/tmp/geo.dat"), ShouldEqual, StatusFail)
		So(b.GetVersion(), ShouldEqual, VersionUnknown)
	})

	Convey("Initializing against a bad directory fails", t, func() {
		base, e := ioutil.TempDir("", "corevisor_bridge")
		So(e, ShouldBeNil)
		Reset(func() {
			os.RemoveAll(base)
		})
		b := NewBridge()
		So(b.InitEnvironment(base), ShouldEqual, StatusFail)
	})
}
