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
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/context"

	"github.com/corevisor/corevisor"
)

// LogInfo carries a snapshot of the daemon's event log plus the etag it
// was fetched under.
type LogInfo struct {
	etag    string
	Records []corevisor.LogRecord
}

// Client talks to a corevisord instance.
type Client struct {
	user      string // HTTP Basic-Auth
	pass      string
	base      string // URI to root of tree on server
	auth      bool
	client    *http.Client
	transport *http.Transport

	// Cached log data
	log  *LogInfo
	lock sync.Mutex
}

// NewClient returns a Client handle.  The transport may be nil to use a
// default transport, but it may also be adjusted to support additional
// options such as TLS.  baseURI is the base URL to use.
func NewClient(t *http.Transport, baseURI string) *Client {
	if t == nil {
		t = &http.Transport{}
	}
	return &Client{
		transport: t,
		base:      baseURI,
		client:    &http.Client{Transport: t},
	}
}

// SetAuth supplies basic-auth credentials for every request.
func (c *Client) SetAuth(user string, pass string) {
	c.user = user
	c.pass = pass
	c.auth = true
}

// Status fetches the core's current state and version.
func (c *Client) Status() (*CoreInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	v := &CoreInfo{}
	if _, e := c.poll(ctx, c.base+"/core", "", 0, v); e != nil {
		return nil, e
	}
	return v, nil
}

// StartCore launches the core with the given config path.  fd is an
// optional descriptor number; negative means none.
func (c *Client) StartCore(configPath string, fd int) error {
	req := &StartRequest{ConfigPath: configPath}
	if fd >= 0 {
		req.FD = &fd
	}
	return c.postJson(c.base+"/core/start", req)
}

// StopCore tears the core down; stopping a stopped core succeeds.
func (c *Client) StopCore() error {
	return c.postJson(c.base+"/core/stop", nil)
}

// UpdateDatabase acknowledges a new database file already on the
// daemon's disk.
func (c *Client) UpdateDatabase(path string) error {
	return c.postJson(c.base+"/core/update", &UpdateRequest{Path: path})
}

// GetLog returns the current event log without waiting.
func (c *Client) GetLog() (*LogInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return c.pollLog(ctx, 0, nil)
}

// WatchLog long-polls until the log changes from the supplied snapshot
// (or the context expires), returning the new snapshot.
func (c *Client) WatchLog(ctx context.Context, last *LogInfo) (*LogInfo, error) {
	return c.pollLog(ctx, 300, last)
}

func (c *Client) pollLog(ctx context.Context, secs int, last *LogInfo) (*LogInfo, error) {
	v := &LogInfo{}

	c.lock.Lock()
	cached := c.log
	c.lock.Unlock()

	otag := ""
	if last == nil {
		secs = 0
	} else if cached != nil && last.etag != cached.etag {
		// The cache has already moved past the caller's snapshot.
		return cached, nil
	} else {
		otag = last.etag
	}

	etag, e := c.poll(ctx, c.base+"/core/log", otag, secs, &v.Records)
	if e != nil {
		c.lock.Lock()
		c.log = nil
		c.lock.Unlock()
		return nil, e
	}
	if etag == "" {
		return cached, nil
	}
	v.etag = etag
	c.lock.Lock()
	c.log = v
	c.lock.Unlock()
	return v, nil
}

type chanResp struct {
	r *http.Response
	e error
}

// poll issues an HTTP GET against the URL, optionally checking for a
// cache, including optionally issuing a long poll that tries to wait
// until the value changes.  The return values are the new Etag and any
// error.  If the value did not change, then the returned etag will be
// "", but the error will be nil.
func (c *Client) poll(ctx context.Context, url string, etag string, wait int, v interface{}) (string, error) {
	req, e := http.NewRequest("GET", url, nil)
	if e != nil {
		return "", e
	}
	if c.auth {
		req.SetBasicAuth(c.user, c.pass)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
		if wait > 0 {
			req.Header.Set(PollEtagHeader, etag)
			req.Header.Set(PollTimeHeader, strconv.Itoa(wait))
		}
	}

	ch := make(chan chanResp)
	go func() {
		res, e := c.client.Do(req)
		ch <- chanResp{r: res, e: e}
	}()

	var res *http.Response
	select {
	case <-ctx.Done():
		c.transport.CancelRequest(req)
		<-ch // wait for the Do to finish (or be canceled)
		return "", ctx.Err()
	case cr := <-ch:
		res = cr.r
		e = cr.e
	}
	if e != nil {
		return "", e
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotModified {
		return "", nil
	}
	if res.StatusCode != http.StatusOK {
		return "", &Error{Code: res.StatusCode, Message: res.Status}
	}
	body, e := ioutil.ReadAll(res.Body)
	if e != nil {
		return "", e
	}
	if e := json.Unmarshal(body, v); e != nil {
		return "", e
	}
	return res.Header.Get("Etag"), nil
}

func (c *Client) postJson(url string, v interface{}) error {
	var body bytes.Buffer
	if v != nil {
		if e := json.NewEncoder(&body).Encode(v); e != nil {
			return e
		}
	} else {
		body.WriteString("{}")
	}
	req, e := http.NewRequest("POST", url, &body)
	if e != nil {
		return e
	}
	req.Header.Set("Content-Type", mimeJson)
	if c.auth {
		req.SetBasicAuth(c.user, c.pass)
	}
	res, e := c.client.Do(req)
	if e != nil {
		return e
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		if b, e := ioutil.ReadAll(res.Body); e == nil {
			apiErr := &Error{}
			if json.Unmarshal(b, apiErr) == nil && apiErr.Message != "" {
				return apiErr
			}
		}
		return &Error{Code: res.StatusCode, Message: res.Status}
	}
	return nil
}
