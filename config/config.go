/*
Copyright 2025 The hookpost authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads named webhook profiles from a YAML file so CLI users
// do not have to paste webhook URLs into every invocation.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KongZ/hookpost/webhook"
)

// Duration wraps time.Duration so profile files can spell timeouts the
// human way, e.g. "5s" or "1m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Profile holds the connection settings of one webhook.
type Profile struct {
	URL                   string   `yaml:"url"`
	ID                    string   `yaml:"id"`
	Token                 string   `yaml:"token"`
	Wait                  bool     `yaml:"wait"`
	Timeout               Duration `yaml:"timeout"`
	InsecureSkipTLSVerify bool     `yaml:"insecure_skip_tls_verify"`
}

// Config is the root of a profile file.
type Config struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Load reads and parses a profile file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Profile looks up a named profile.
func (c *Config) Profile(name string) (Profile, error) {
	profile, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found in config", name)
	}
	return profile, nil
}

// Options converts a profile into webhook client options.
func (p Profile) Options() webhook.Options {
	return webhook.Options{
		URL:                   p.URL,
		ID:                    p.ID,
		Token:                 p.Token,
		Wait:                  p.Wait,
		Timeout:               time.Duration(p.Timeout),
		InsecureSkipTLSVerify: p.InsecureSkipTLSVerify,
	}
}
