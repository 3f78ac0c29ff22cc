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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/corevisor/corevisor"
)

// Handler wraps a Supervisor, adding http.Handler functionality.
type Handler struct {
	s    *corevisor.Supervisor
	r    *mux.Router
	user string
	hash []byte
}

// NewHandler returns the REST surface for a supervisor.
func NewHandler(s *corevisor.Supervisor) *Handler {
	r := mux.NewRouter()
	h := &Handler{s: s, r: r}
	r.HandleFunc("/core", h.getCore).Methods("GET")
	r.HandleFunc("/core/start", h.startCore).Methods("POST")
	r.HandleFunc("/core/stop", h.stopCore).Methods("POST")
	r.HandleFunc("/core/update", h.updateDatabase).Methods("POST")
	r.HandleFunc("/core/log", h.getLog).Methods("GET")
	return h
}

// SetAuth enables HTTP basic auth.  The hash is a bcrypt digest of the
// password; the clear text is never stored server side.
func (h *Handler) SetAuth(user string, hash []byte) {
	h.user = user
	h.hash = hash
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.hash == nil {
		return true
	}
	user, pass, got := r.BasicAuth()
	if !got || user != h.user {
		return false
	}
	return bcrypt.CompareHashAndPassword(h.hash, []byte(pass)) == nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !h.authorized(req) {
		w.Header().Set("WWW-Authenticate", `Basic realm="corevisor"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	h.r.ServeHTTP(w, req)
}

func (h *Handler) internalError(w http.ResponseWriter, e error) {
	http.Error(w, e.Error(), http.StatusInternalServerError)
}

func (h *Handler) writeJson(w http.ResponseWriter, v interface{}) {
	if b, e := json.Marshal(v); e != nil {
		h.internalError(w, e)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.Write(b)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, e *Error) {
	if b, err := json.Marshal(e); err != nil {
		h.internalError(w, err)
	} else {
		w.Header().Set("Content-Type", mimeJson)
		w.WriteHeader(e.Code)
		w.Write(b)
	}
}

// writeOpError maps supervisor errors onto HTTP codes: bad requests are
// the caller's fault, everything else is ours.
func (h *Handler) writeOpError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, corevisor.ErrBadRequest) ||
		errors.Is(err, corevisor.ErrNotFound) {
		code = http.StatusBadRequest
	}
	h.writeError(w, &Error{Code: code, Message: err.Error()})
}

func (h *Handler) getCore(w http.ResponseWriter, r *http.Request) {
	info := h.s.Status()
	h.writeJson(w, &CoreInfo{
		Running:    info.Running,
		PID:        info.PID,
		Generation: info.Generation,
		ConfigPath: info.ConfigPath,
		StartedAt:  info.StartedAt,
		Version:    h.s.Version(),
	})
}

func (h *Handler) startCore(w http.ResponseWriter, r *http.Request) {
	req := &StartRequest{}
	if e := json.NewDecoder(r.Body).Decode(req); e != nil {
		h.writeError(w, &Error{http.StatusBadRequest, e.Error()})
		return
	}
	fd := -1
	if req.FD != nil {
		fd = *req.FD
	}
	lr := corevisor.LaunchRequest{ConfigPath: req.ConfigPath, FD: fd}
	if e := h.s.Start(lr); e != nil {
		h.writeOpError(w, e)
		return
	}
	h.writeJson(w, ok)
}

func (h *Handler) stopCore(w http.ResponseWriter, r *http.Request) {
	if e := h.s.Stop(); e != nil {
		h.writeOpError(w, e)
		return
	}
	h.writeJson(w, ok)
}

func (h *Handler) updateDatabase(w http.ResponseWriter, r *http.Request) {
	req := &UpdateRequest{}
	if e := json.NewDecoder(r.Body).Decode(req); e != nil {
		h.writeError(w, &Error{http.StatusBadRequest, e.Error()})
		return
	}
	if e := h.s.UpdateDatabase(req.Path); e != nil {
		h.writeOpError(w, e)
		return
	}
	h.writeJson(w, ok)
}

// getLog serves the event log with etag caching, and long-polls when
// the client asks to wait for a change.
func (h *Handler) getLog(w http.ResponseWriter, r *http.Request) {
	var last int64
	if v := r.Header.Get(PollEtagHeader); v != "" {
		last, _ = strconv.ParseInt(v, 10, 64)
		if secs, _ := strconv.Atoi(r.Header.Get(PollTimeHeader)); secs > 0 {
			h.s.Events().Watch(last, time.Duration(secs)*time.Second)
		}
	} else if v := r.Header.Get("If-None-Match"); v != "" {
		last, _ = strconv.ParseInt(v, 10, 64)
	}
	recs, id := h.s.Events().GetRecords(last)
	if recs == nil && last != 0 {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Etag", strconv.FormatInt(id, 10))
	h.writeJson(w, recs)
}
