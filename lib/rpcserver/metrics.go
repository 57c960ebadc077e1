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

package rpcserver

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scada_agent_sessions_created_total",
			Help: "Number of sessions created via CreateSession.",
		},
	)

	loginResultTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scada_agent_login_result_total",
			Help: "Login attempts, partitioned by result.",
		},
		[]string{"result"},
	)

	configPacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scada_agent_config_packs_total",
			Help: "Number of DownloadConfig packs served.",
		},
	)

	configUnpacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scada_agent_config_unpacks_total",
			Help: "Number of UploadConfig unpacks applied.",
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsCreatedTotal, loginResultTotal, configPacksTotal, configUnpacksTotal)
}
