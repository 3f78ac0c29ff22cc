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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadConfig(t *testing.T) {
	Convey("A full config file parses", t, func() {
		dir, e := ioutil.TempDir("", "corevisor_cfg")
		So(e, ShouldBeNil)
		Reset(func() {
			os.RemoveAll(dir)
		})
		path := filepath.Join(dir, "corevisord.yaml")
		doc := `
listen: 127.0.0.1:9999
baseDir: /data/core
execName: xcore
stopGrace: 250ms
authUser: admin
`
		So(ioutil.WriteFile(path, []byte(doc), 0644), ShouldBeNil)

		c, e := LoadConfig(path)
		So(e, ShouldBeNil)
		So(c.Listen, ShouldEqual, "127.0.0.1:9999")
		So(c.BaseDir, ShouldEqual, "/data/core")
		So(c.ExecName, ShouldEqual, "xcore")
		So(c.AuthUser, ShouldEqual, "admin")
		So(c.Grace(), ShouldEqual, 250*time.Millisecond)

		Convey("A bad duration is an error", func() {
			So(ioutil.WriteFile(path,
				[]byte("stopGrace: soonish\n"), 0644), ShouldBeNil)
			_, e := LoadConfig(path)
			So(e, ShouldNotBeNil)
		})

		Convey("A missing file is an error", func() {
			_, e := LoadConfig(filepath.Join(dir, "nope.yaml"))
			So(e, ShouldNotBeNil)
		})
	})

	Convey("Grace defaults sensibly", t, func() {
		var c *Config
		So(c.Grace(), ShouldEqual, DefaultStopGrace)
		So((&Config{}).Grace(), ShouldEqual, DefaultStopGrace)
	})
}
