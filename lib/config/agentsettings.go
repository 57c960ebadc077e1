// Copyright 2026 Rapid SCADA Agent contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the Agent's ScadaAgentConfig.xml and the
// administrator's connection profile file. encoding/xml is used because
// the wire format is mandated externally (spec §6), not chosen freely.
package config

import (
	"encoding/hex"
	"encoding/xml"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gravitational/trace"

	"github.com/rapidscada/agent/lib/cryptosupport"
)

// InstanceSettings names one managed site and its absolute root directory
// on the agent host.
type InstanceSettings struct {
	Name      string
	Directory string
}

// AgentSettings is loaded once at agent start and never mutated at
// runtime.
type AgentSettings struct {
	SecretKey []byte
	Instances []InstanceSettings
}

type xmlAgentConfig struct {
	XMLName   xml.Name `xml:"ScadaAgentConfig"`
	SecretKey string   `xml:"SecretKey"`
	Instances struct {
		Instance []struct {
			Name      string `xml:"name,attr"`
			Directory string `xml:"directory,attr"`
		} `xml:"Instance"`
	} `xml:"Instances"`
}

// LoadAgentSettings reads and validates ScadaAgentConfig.xml at path.
func LoadAgentSettings(path string) (*AgentSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, trace.Wrap(err, "reading agent config")
	}

	var parsed xmlAgentConfig
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, trace.BadParameter("malformed agent config %s: %v", path, err)
	}

	key, err := hex.DecodeString(strings.TrimSpace(parsed.SecretKey))
	if err != nil {
		return nil, trace.BadParameter("secret key is not valid hex: %v", err)
	}
	if err := cryptosupport.ValidateSecretKey(key); err != nil {
		return nil, trace.Wrap(err)
	}

	settings := &AgentSettings{SecretKey: key}
	seen := make(map[string]bool, len(parsed.Instances.Instance))
	for _, inst := range parsed.Instances.Instance {
		if inst.Name == "" {
			return nil, trace.BadParameter("instance with empty name in %s", path)
		}
		if seen[inst.Name] {
			return nil, trace.BadParameter("duplicate instance name %q in %s", inst.Name, path)
		}
		seen[inst.Name] = true

		dir := inst.Directory
		if dir != "" && !strings.HasSuffix(dir, string(filepath.Separator)) {
			dir += string(filepath.Separator)
		}
		settings.Instances = append(settings.Instances, InstanceSettings{
			Name:      inst.Name,
			Directory: dir,
		})
	}

	sort.Slice(settings.Instances, func(i, j int) bool {
		return settings.Instances[i].Name < settings.Instances[j].Name
	})

	return settings, nil
}
