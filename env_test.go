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
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPrepareEnv(t *testing.T) {
	Convey("Prepare asserts the execute bit", t, func() {
		base, _ := mkBase(t)
		So(os.Chmod(ExecPath(base), 0644), ShouldBeNil)

		So(PrepareEnv(base), ShouldBeNil)
		fi, e := os.Stat(ExecPath(base))
		So(e, ShouldBeNil)
		So(fi.Mode().Perm(), ShouldEqual, os.FileMode(0755))

		Convey("Idempotently", func() {
			So(PrepareEnv(base), ShouldBeNil)
			fi, e := os.Stat(ExecPath(base))
			So(e, ShouldBeNil)
			So(fi.Mode().Perm(), ShouldEqual, os.FileMode(0755))
		})
	})

	Convey("A missing binary is diagnosed", t, func() {
		base, e := ioutil.TempDir("", "corevisor_env")
		So(e, ShouldBeNil)
		Reset(func() {
			os.RemoveAll(base)
		})
		e = PrepareEnv(base)
		So(e, ShouldNotBeNil)
		So(errors.Is(e, ErrNotFound), ShouldBeTrue)
	})

	Convey("A directory where the binary should be is diagnosed", t, func() {
		base, e := ioutil.TempDir("", "corevisor_env")
		So(e, ShouldBeNil)
		Reset(func() {
			os.RemoveAll(base)
		})
		So(os.MkdirAll(ExecPath(base), 0755), ShouldBeNil)
		e = PrepareEnv(base)
		So(e, ShouldNotBeNil)
		So(errors.Is(e, ErrNotFound), ShouldBeTrue)
	})

	Convey("An unreachable binary is not reported as missing", t, func() {
		base, e := ioutil.TempDir("", "corevisor_env")
		So(e, ShouldBeNil)
		Reset(func() {
			os.RemoveAll(base)
		})
		// bin is a plain file, so statting bin/core fails with
		// something other than ENOENT
		So(ioutil.WriteFile(filepath.Join(base, "bin"),
			[]byte("in the way"), 0644), ShouldBeNil)
		e = PrepareEnv(base)
		So(e, ShouldNotBeNil)
		So(errors.Is(e, ErrPermission), ShouldBeTrue)
		So(errors.Is(e, ErrNotFound), ShouldBeFalse)
	})
}
