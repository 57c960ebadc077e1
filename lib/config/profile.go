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

package config

import (
	"encoding/hex"
	"encoding/xml"
	"os"

	"github.com/gravitational/trace"

	"github.com/rapidscada/agent/lib/cryptosupport"
)

// ConnectionProfile is one administrator-side entry identifying a
// reachable Agent and the credentials used to log into one of its
// instances.
type ConnectionProfile struct {
	Name         string
	Host         string
	Port         int
	Username     string
	Password     string
	InstanceName string
	SecretKey    []byte
}

type xmlProfile struct {
	Name         string `xml:"name,attr"`
	Host         string `xml:"Host"`
	Port         int    `xml:"Port"`
	Username     string `xml:"Username"`
	Password     string `xml:"Password"`
	InstanceName string `xml:"InstanceName"`
	SecretKey    string `xml:"SecretKey"`
}

type xmlProfileSet struct {
	XMLName  xml.Name     `xml:"ConnectionProfiles"`
	Profiles []xmlProfile `xml:"ConnectionProfile"`
}

// LoadConnectionProfiles reads an ordered collection of connection
// profiles from the administrator's configuration directory, rejecting
// duplicate names.
func LoadConnectionProfiles(path string) ([]ConnectionProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, trace.Wrap(err, "reading connection profiles")
	}

	var parsed xmlProfileSet
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, trace.BadParameter("malformed connection profiles %s: %v", path, err)
	}

	seen := make(map[string]bool, len(parsed.Profiles))
	out := make([]ConnectionProfile, 0, len(parsed.Profiles))
	for _, p := range parsed.Profiles {
		if p.Name == "" {
			return nil, trace.BadParameter("connection profile with empty name")
		}
		if seen[p.Name] {
			return nil, trace.BadParameter("duplicate connection profile name %q", p.Name)
		}
		seen[p.Name] = true

		key, err := hex.DecodeString(p.SecretKey)
		if err != nil {
			return nil, trace.BadParameter("profile %q: secret key is not valid hex: %v", p.Name, err)
		}
		if err := cryptosupport.ValidateSecretKey(key); err != nil {
			return nil, trace.Wrap(err, "profile %q", p.Name)
		}

		out = append(out, ConnectionProfile{
			Name:         p.Name,
			Host:         p.Host,
			Port:         p.Port,
			Username:     p.Username,
			Password:     p.Password,
			InstanceName: p.InstanceName,
			SecretKey:    key,
		})
	}
	return out, nil
}

// SaveConnectionProfiles persists the set back to path in the same
// format LoadConnectionProfiles reads.
func SaveConnectionProfiles(path string, profiles []ConnectionProfile) error {
	set := xmlProfileSet{}
	for _, p := range profiles {
		set.Profiles = append(set.Profiles, xmlProfile{
			Name:         p.Name,
			Host:         p.Host,
			Port:         p.Port,
			Username:     p.Username,
			Password:     p.Password,
			InstanceName: p.InstanceName,
			SecretKey:    hex.EncodeToString(p.SecretKey),
		})
	}

	data, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return trace.Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return trace.Wrap(err, "writing connection profiles")
	}
	return nil
}
