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
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the optional corevisord configuration file.  Command line
// flags override anything set here.
type Config struct {
	Listen    string `yaml:"listen"`
	BaseDir   string `yaml:"baseDir"`
	ExecName  string `yaml:"execName"`
	StopGrace string `yaml:"stopGrace"` // duration, e.g. "100ms"
	AuthUser  string `yaml:"authUser"`
	AuthHash  string `yaml:"authHash"` // bcrypt digest of the password

	grace time.Duration
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	b, e := ioutil.ReadFile(path)
	if e != nil {
		return nil, e
	}
	c := &Config{}
	if e := yaml.Unmarshal(b, c); e != nil {
		return nil, e
	}
	if c.StopGrace != "" {
		d, e := time.ParseDuration(c.StopGrace)
		if e != nil {
			return nil, fmt.Errorf("stopGrace: %v", e)
		}
		c.grace = d
	}
	return c, nil
}

// Grace returns the configured stop grace period, or the default.  Safe
// on a nil receiver.
func (c *Config) Grace() time.Duration {
	if c == nil || c.grace == 0 {
		return DefaultStopGrace
	}
	return c.grace
}
