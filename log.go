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
	"strings"
	"sync"
	"time"
)

// MaxLogRecords bounds the in-memory event log.
const MaxLogRecords = 1000

// LogRecord is one supervisor event.  Ids increase monotonically and
// double as etags for the REST long poll.
type LogRecord struct {
	Id   int64     `json:"id,string"`
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Log is a fixed-size ring of supervisor events.  It implements
// io.Writer so a log.Logger can feed it directly.
type Log struct {
	records []LogRecord
	next    int
	id      int64
	cvs     map[*sync.Cond]bool
	mx      sync.Mutex
}

// NewLog returns an empty event log.  The id origin is the current time
// in nanoseconds, so ids from before a restart never collide with ids
// after it.
func NewLog() *Log {
	return &Log{
		records: make([]LogRecord, MaxLogRecords),
		id:      time.Now().UnixNano(),
		cvs:     make(map[*sync.Cond]bool),
	}
}

// Write implements the line-oriented Writer semantic that log.Logger
// expects.
func (l *Log) Write(b []byte) (int, error) {
	str := strings.Trim(string(b), "\n")
	l.mx.Lock()
	for _, line := range strings.Split(str, "\n") {
		l.id++
		l.records[l.next%len(l.records)] = LogRecord{
			Id:   l.id,
			Time: time.Now(),
			Text: line,
		}
		l.next++
	}
	for cv := range l.cvs {
		cv.Broadcast()
	}
	l.mx.Unlock()
	return len(b), nil
}

// GetRecords returns the stored records, oldest first, along with the
// current id.  If last matches the current id then nothing has changed
// and nil records are returned.
func (l *Log) GetRecords(last int64) ([]LogRecord, int64) {
	l.mx.Lock()
	defer l.mx.Unlock()
	if l.id == last {
		return nil, last
	}
	cnt := l.next
	if cnt > len(l.records) {
		cnt = len(l.records)
	}
	recs := make([]LogRecord, 0, cnt)
	for i := l.next - cnt; i < l.next; i++ {
		recs = append(recs, l.records[i%len(l.records)])
	}
	return recs, l.id
}

// Watch blocks until the log id differs from last, or the expiration
// passes.  Zero expiration polls.  The returned id is current either
// way.
func (l *Log) Watch(last int64, expire time.Duration) int64 {
	expired := false
	var timer *time.Timer
	cv := sync.NewCond(&l.mx)

	if expire > 0 {
		timer = time.AfterFunc(expire, func() {
			l.mx.Lock()
			expired = true
			cv.Broadcast()
			l.mx.Unlock()
		})
	} else {
		expired = true
	}

	l.mx.Lock()
	l.cvs[cv] = true
	for l.id == last && !expired {
		cv.Wait()
	}
	delete(l.cvs, cv)
	rv := l.id
	l.mx.Unlock()
	if timer != nil {
		timer.Stop()
	}
	return rv
}
