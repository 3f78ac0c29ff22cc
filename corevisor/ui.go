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

// +build !plan9,!nacl

package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell"
	"github.com/gdamore/tcell/views"

	"github.com/corevisor/corevisor/rest"
)

/*
   The monitor has the following appearance:

    Corevisor                               http://127.0.0.1:8421
   ____________________________________________________________________

    State:    running
    PID:      12345
    Config:   /data/app/cfg.json
    Up:       4m10s
    Version:  Core 5.14.1 (linux/arm64)

   ____________________________________________________________________
   [R]estart [K]ill [Q]uit
*/

type monitor struct {
	app    *views.Application
	client *rest.Client
	title  *views.SimpleStyledTextBar
	status *views.Text
	keys   *views.SimpleStyledTextBar
	info   *rest.CoreInfo
	err    error

	views.BoxLayout
}

func (m *monitor) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlC, tcell.KeyEsc:
			m.app.Quit()
			return true
		case tcell.KeyCtrlL:
			m.app.Refresh()
			return true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				m.app.Quit()
				return true
			case 'k', 'K':
				go m.client.StopCore()
				return true
			case 'r', 'R':
				// Restart reuses the running config; the
				// supervisor stops the old instance itself.
				if inf := m.info; inf != nil && inf.Running {
					cfg := inf.ConfigPath
					go m.client.StartCore(cfg, -1)
				}
				return true
			}
		}
	}
	return m.BoxLayout.HandleEvent(ev)
}

func (m *monitor) update() {
	if m.err != nil {
		m.status.SetText(fmt.Sprintf("\n Cannot reach daemon: %v", m.err))
		m.app.Update()
		return
	}
	info := m.info
	if info == nil {
		m.status.SetText("\n Connecting...")
		m.app.Update()
		return
	}
	state := "stopped"
	pid := "-"
	up := "-"
	cfg := "-"
	if info.Running {
		state = "running"
		pid = fmt.Sprintf("%d", info.PID)
		d := time.Since(info.StartedAt)
		d -= d % time.Second
		up = d.String()
		cfg = info.ConfigPath
	}
	m.status.SetText(fmt.Sprintf(
		"\n State:    %s\n PID:      %s\n Config:   %s\n Up:       %s\n Version:  %s",
		state, pid, cfg, up, info.Version))
	m.app.Update()
}

func (m *monitor) refresh() {
	for {
		info, err := m.client.Status()
		m.app.PostFunc(func() {
			m.info = info
			m.err = err
			m.update()
		})
		time.Sleep(time.Second)
	}
}

func doUI(client *rest.Client, url string) {
	m := &monitor{client: client}
	m.app = &views.Application{}

	title := views.NewSimpleStyledTextBar()
	title.SetStyle(tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorTeal))
	title.SetLeft(" Corevisor")
	title.SetRight(url + " ")

	status := views.NewText()
	status.SetText("\n Connecting...")

	keys := views.NewSimpleStyledTextBar()
	keys.SetStyle(tcell.StyleDefault.
		Foreground(tcell.ColorBlack).
		Background(tcell.ColorSilver))
	keys.SetLeft(" [R]estart [K]ill [Q]uit")

	m.title = title
	m.status = status
	m.keys = keys
	m.SetOrientation(views.Vertical)
	m.AddWidget(title, 0)
	m.AddWidget(status, 1)
	m.AddWidget(keys, 0)

	m.app.SetRootWidget(m)
	go m.refresh()
	if e := m.app.Run(); e != nil {
		log.Fatalf("UI error: %v", e)
	}
}
