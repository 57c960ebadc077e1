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

// Command scada-agent runs the Rapid SCADA Agent: it serves the RPC
// surface administrators use to manage the configuration and service
// state of every instance listed in its Config/ScadaAgentConfig.xml.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/rapidscada/agent/constants"
	"github.com/rapidscada/agent/lib/agentloop"
	"github.com/rapidscada/agent/lib/authn"
	"github.com/rapidscada/agent/lib/config"
	"github.com/rapidscada/agent/lib/instance"
	"github.com/rapidscada/agent/lib/rpcserver"
	"github.com/rapidscada/agent/lib/session"
	"github.com/rapidscada/agent/rpc"
)

// exeLayout is the fixed set of subdirectories the agent's own executable
// directory must contain at start (spec §6): Cmd is optional, the rest
// abort startup if missing.
type exeLayout struct {
	config, lang, log, temp, cmd string
}

func newExeLayout(exeDir string) exeLayout {
	return exeLayout{
		config: filepath.Join(exeDir, "Config"),
		lang:   filepath.Join(exeDir, "Lang"),
		log:    filepath.Join(exeDir, "Log"),
		temp:   filepath.Join(exeDir, "Temp"),
		cmd:    filepath.Join(exeDir, "Cmd"),
	}
}

// validate aborts startup with a logged error if any required directory
// is absent; Cmd is optional.
func (l exeLayout) validate() error {
	for _, dir := range []string{l.config, l.lang, l.log, l.temp} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return trace.BadParameter("required agent directory %s is missing", dir)
		}
	}
	return nil
}

func main() {
	root := &cobra.Command{
		Use:   "scada-agent",
		Short: "Rapid SCADA remote Agent",
		Long: `scada-agent serves the RPC surface used by administrator tools to
download and upload instance configuration, browse instance files, and
start/stop/restart instance services.`,
		Version: constants.Version,
	}

	var exeDir string
	var listenAddr string

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the agent in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(exeDir, listenAddr)
		},
	}
	run.Flags().StringVar(&exeDir, "exe-dir", ".", "Agent executable directory (must contain Config, Lang, Log, Temp)")
	run.Flags().StringVar(&listenAddr, "listen", "0.0.0.0:10000", "Address the RPC surface listens on")
	root.AddCommand(run)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runAgent(exeDir, listenAddr string) error {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log := logrus.WithField(trace.Component, "agent")

	layout := newExeLayout(exeDir)
	if err := layout.validate(); err != nil {
		log.WithError(err).Error("startup aborted: missing required directory")
		return trace.Wrap(err)
	}

	settings, err := config.LoadAgentSettings(filepath.Join(layout.config, "ScadaAgentConfig.xml"))
	if err != nil {
		log.WithError(err).Error("failed to load agent configuration")
		return trace.Wrap(err)
	}

	registry := instance.NewRegistry(settings, authn.DenyAll{})
	sessions := session.NewStore(clockwork.NewRealClock())

	loop, err := agentloop.New(agentloop.Config{
		Sessions: sessions,
		TempDir:  layout.temp,
		InfoFile: filepath.Join(layout.log, "scada-agent.txt"),
		Version:  constants.Version,
	})
	if err != nil {
		return trace.Wrap(err)
	}
	loop.Start()
	defer loop.Stop()

	srv, err := rpcserver.New(rpcserver.Config{
		Registry:  registry,
		Sessions:  sessions,
		SecretKey: settings.SecretKey,
		TempDir:   layout.temp,
	})
	if err != nil {
		return trace.Wrap(err)
	}

	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return trace.Wrap(err, "listening on %s", listenAddr)
	}

	gs := grpc.NewServer()
	rpc.RegisterAgentServiceServer(gs, srv)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("agent listening on %s", listenAddr)
		if err := gs.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
	case err := <-errCh:
		log.WithError(err).Error("rpc server stopped unexpectedly")
	}

	gs.GracefulStop()
	return nil
}
