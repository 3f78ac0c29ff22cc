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
	"log"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLog(t *testing.T) {
	Convey("Records are kept in order with monotone ids", t, func() {
		l := NewLog()
		l.Write([]byte("first"))
		l.Write([]byte("second"))

		recs, last := l.GetRecords(0)
		So(len(recs), ShouldEqual, 2)
		So(recs[0].Text, ShouldEqual, "first")
		So(recs[1].Text, ShouldEqual, "second")
		So(recs[1].Id, ShouldBeGreaterThan, recs[0].Id)
		So(last, ShouldEqual, recs[1].Id)

		Convey("And an up-to-date reader sees nothing new", func() {
			recs, again := l.GetRecords(last)
			So(recs, ShouldBeNil)
			So(again, ShouldEqual, last)
		})
	})

	Convey("Old records roll off the ring", t, func() {
		l := NewLog()
		for i := 0; i < MaxLogRecords+10; i++ {
			l.Write([]byte(fmt.Sprintf("line %d", i)))
		}
		recs, _ := l.GetRecords(0)
		So(len(recs), ShouldEqual, MaxLogRecords)
		So(recs[0].Text, ShouldEqual, "line 10")
		So(recs[len(recs)-1].Text, ShouldEqual,
			fmt.Sprintf("line %d", MaxLogRecords+9))
	})

	Convey("Watch wakes on a new record", t, func() {
		l := NewLog()
		l.Write([]byte("seed"))
		_, last := l.GetRecords(0)

		done := make(chan int64, 1)
		go func() {
			done <- l.Watch(last, 5*time.Second)
		}()
		time.Sleep(10 * time.Millisecond)
		l.Write([]byte("wake up"))

		select {
		case id := <-done:
			So(id, ShouldBeGreaterThan, last)
		case <-time.After(2 * time.Second):
			So("watch never woke", ShouldBeBlank)
		}
	})

	Convey("Watch expires when nothing happens", t, func() {
		l := NewLog()
		_, last := l.GetRecords(0)
		begin := time.Now()
		So(l.Watch(last, 50*time.Millisecond), ShouldEqual, last)
		So(time.Since(begin), ShouldBeLessThan, 2*time.Second)
	})

	Convey("Plumbed through a MultiLogger", t, func() {
		l := NewLog()
		m := NewMultiLogger()
		m.AddLogger(log.New(l, "", 0))
		m.Logger().Println("hello there")
		recs, _ := l.GetRecords(0)
		So(len(recs), ShouldEqual, 1)
		So(recs[0].Text, ShouldEqual, "hello there")
	})
}
