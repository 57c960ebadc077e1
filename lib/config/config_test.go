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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleAgentConfig = `<?xml version="1.0" encoding="utf-8"?>
<ScadaAgentConfig>
  <SecretKey>30313233343536373839616263646566</SecretKey>
  <Instances>
    <Instance name="site1" directory="/srv/instances/site1" />
    <Instance name="site2" directory="/srv/instances/site2/" />
  </Instances>
</ScadaAgentConfig>`

func TestLoadAgentSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ScadaAgentConfig.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleAgentConfig), 0o600))

	settings, err := LoadAgentSettings(path)
	require.NoError(t, err)
	require.Len(t, settings.SecretKey, 16)
	require.Len(t, settings.Instances, 2)
	require.Equal(t, "site1", settings.Instances[0].Name)
	require.Equal(t, "site2", settings.Instances[1].Name)
	require.Equal(t, string(filepath.Separator), settings.Instances[1].Directory[len(settings.Instances[1].Directory)-1:])
}

func TestLoadAgentSettingsRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ScadaAgentConfig.xml")
	bad := `<ScadaAgentConfig>
  <SecretKey>30313233343536373839616263646566</SecretKey>
  <Instances>
    <Instance name="site1" directory="/a" />
    <Instance name="site1" directory="/b" />
  </Instances>
</ScadaAgentConfig>`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))

	_, err := LoadAgentSettings(path)
	require.Error(t, err)
}

func TestLoadAgentSettingsRejectsBadKeyLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ScadaAgentConfig.xml")
	bad := `<ScadaAgentConfig>
  <SecretKey>3031</SecretKey>
  <Instances></Instances>
</ScadaAgentConfig>`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))

	_, err := LoadAgentSettings(path)
	require.Error(t, err)
}

func TestConnectionProfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.xml")

	profiles := []ConnectionProfile{
		{
			Name:         "prod",
			Host:         "10.0.0.5",
			Port:         10002,
			Username:     "admin",
			Password:     "secret",
			InstanceName: "site1",
			SecretKey:    make([]byte, 16),
		},
	}
	require.NoError(t, SaveConnectionProfiles(path, profiles))

	loaded, err := LoadConnectionProfiles(path)
	require.NoError(t, err)
	require.Equal(t, profiles, loaded)
}

func TestLoadConnectionProfilesRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.xml")
	bad := `<ConnectionProfiles>
  <ConnectionProfile name="a"><Host>h</Host><Port>1</Port><Username>u</Username><Password>p</Password><InstanceName>i</InstanceName><SecretKey>30313233343536373839616263646566</SecretKey></ConnectionProfile>
  <ConnectionProfile name="a"><Host>h2</Host><Port>2</Port><Username>u</Username><Password>p</Password><InstanceName>i</InstanceName><SecretKey>30313233343536373839616263646566</SecretKey></ConnectionProfile>
</ConnectionProfiles>`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))

	_, err := LoadConnectionProfiles(path)
	require.Error(t, err)
}

