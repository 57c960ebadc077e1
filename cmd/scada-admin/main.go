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

// Command scada-admin is the administrator-side CLI counterpart to
// scada-agent: it dials a configured agent, logs into one of its
// instances, and drives config transfer, browsing, and service control
// against it.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rapidscada/agent/constants"
	"github.com/rapidscada/agent/lib/config"
	"github.com/rapidscada/agent/lib/instance"
	"github.com/rapidscada/agent/lib/layout"
	"github.com/rapidscada/agent/lib/rpcclient"
)

func defaultProfilesPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "scada-admin", "profiles.xml")
}

func loadProfile(profilesPath, name string) (config.ConnectionProfile, error) {
	profiles, err := config.LoadConnectionProfiles(profilesPath)
	if err != nil {
		return config.ConnectionProfile{}, err
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return config.ConnectionProfile{}, fmt.Errorf("no connection profile named %q in %s", name, profilesPath)
}

func main() {
	var profilesPath, profileName string

	root := &cobra.Command{
		Use:     "scada-admin",
		Short:   "Administrator CLI for the Rapid SCADA Agent",
		Version: constants.Version,
	}
	root.PersistentFlags().StringVar(&profilesPath, "profiles", defaultProfilesPath(), "Connection profile file")
	root.PersistentFlags().StringVar(&profileName, "profile", "", "Connection profile name (required)")

	connectTo := func(ctx context.Context) (*rpcclient.ClientTransport, error) {
		if profileName == "" {
			return nil, fmt.Errorf("--profile is required")
		}
		profile, err := loadProfile(profilesPath, profileName)
		if err != nil {
			return nil, err
		}
		return rpcclient.Connect(ctx, profile)
	}

	root.AddCommand(newDownloadCmd(connectTo))
	root.AddCommand(newUploadCmd(connectTo))
	root.AddCommand(newControlCmd(connectTo))
	root.AddCommand(newStatusCmd(connectTo))
	root.AddCommand(newBrowseCmd(connectTo))
	root.AddCommand(newProfilesCmd(&profilesPath))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type dialer func(ctx context.Context) (*rpcclient.ClientTransport, error)

func parsePartsFlag(s string) (layout.ConfigPart, error) {
	if s == "" || s == "all" {
		return layout.PartAll, nil
	}
	names := map[string]layout.ConfigPart{
		"base":      layout.PartBase,
		"interface": layout.PartInterface,
		"server":    layout.PartServer,
		"comm":      layout.PartComm,
		"web":       layout.PartWeb,
	}
	var out layout.ConfigPart
	for _, tok := range splitComma(s) {
		part, ok := names[tok]
		if !ok {
			return 0, fmt.Errorf("unknown config part %q", tok)
		}
		out |= part
	}
	return out, nil
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func newDownloadCmd(connect dialer) *cobra.Command {
	var partsFlag, path string
	var asArchive, includeSiteSpecific, clearBeforeWrite bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download instance configuration from the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := parsePartsFlag(partsFlag)
			if err != nil {
				return err
			}
			transport, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer transport.Close()

			return transport.DownloadConfig(cmd.Context(), rpcclient.TransferPlan{
				Parts:               parts,
				Path:                path,
				IsArchive:           asArchive,
				IncludeSiteSpecific: includeSiteSpecific,
				ClearBeforeWrite:    clearBeforeWrite,
			})
		},
	}
	cmd.Flags().StringVar(&partsFlag, "parts", "all", "Comma-separated config parts (base,interface,server,comm,web,all)")
	cmd.Flags().StringVar(&path, "path", "", "Destination directory, or archive file with --archive")
	cmd.Flags().BoolVar(&asArchive, "archive", false, "Treat --path as a single zip archive instead of a directory")
	cmd.Flags().BoolVar(&includeSiteSpecific, "include-site-specific", false, "Include per-site registration data")
	cmd.Flags().BoolVar(&clearBeforeWrite, "clear", false, "Clear the destination working set before writing")
	cmd.MarkFlagRequired("path")
	return cmd
}

func newUploadCmd(connect dialer) *cobra.Command {
	var partsFlag, path string
	var asArchive, includeSiteSpecific bool

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload instance configuration to the agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			parts, err := parsePartsFlag(partsFlag)
			if err != nil {
				return err
			}
			transport, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer transport.Close()

			return transport.UploadConfig(cmd.Context(), rpcclient.TransferPlan{
				Parts:               parts,
				Path:                path,
				IsArchive:           asArchive,
				IncludeSiteSpecific: includeSiteSpecific,
			})
		},
	}
	cmd.Flags().StringVar(&partsFlag, "parts", "all", "Comma-separated config parts (base,interface,server,comm,web,all)")
	cmd.Flags().StringVar(&path, "path", "", "Source directory, or archive file with --archive")
	cmd.Flags().BoolVar(&asArchive, "archive", false, "Treat --path as a single zip archive instead of a directory")
	cmd.Flags().BoolVar(&includeSiteSpecific, "include-site-specific", false, "Include per-site registration data")
	cmd.MarkFlagRequired("path")
	return cmd
}

func parseServiceKind(s string) (instance.ServiceKind, error) {
	switch s {
	case "server":
		return instance.ServiceServer, nil
	case "comm":
		return instance.ServiceComm, nil
	default:
		return 0, fmt.Errorf("unknown service %q (want server or comm)", s)
	}
}

func newControlCmd(connect dialer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "control [server|comm] [start|stop|restart]",
		Short: "Start, stop, or restart an instance service",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseServiceKind(args[0])
			if err != nil {
				return err
			}
			var command instance.ServiceCommand
			switch args[1] {
			case "start":
				command = instance.CommandStart
			case "stop":
				command = instance.CommandStop
			case "restart":
				command = instance.CommandRestart
			default:
				return fmt.Errorf("unknown command %q (want start, stop, or restart)", args[1])
			}

			transport, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer transport.Close()

			ok, errMsg, err := transport.ControlService(cmd.Context(), kind, command)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("command rejected: %s", errMsg)
			}
			fmt.Printf("%s %s: OK\n", args[1], args[0])
			return nil
		},
	}
	return cmd
}

func newStatusCmd(connect dialer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show Server and Comm service status",
		RunE: func(cmd *cobra.Command, args []string) error {
			transport, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer transport.Close()

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Service", "Status"})
			for _, kind := range []instance.ServiceKind{instance.ServiceServer, instance.ServiceComm} {
				ok, status, err := transport.GetServiceStatus(cmd.Context(), kind)
				if err != nil {
					return err
				}
				if !ok {
					table.Append([]string{kind.String(), "unavailable"})
					continue
				}
				table.Append([]string{kind.String(), status.String()})
			}
			table.Render()
			return nil
		},
	}
	return cmd
}

func newBrowseCmd(connect dialer) *cobra.Command {
	var partFlag string

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "List the directories and files under a config part",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			part, err := parsePartsFlag(partFlag)
			if err != nil {
				return err
			}
			tail := ""
			if len(args) == 1 {
				tail = args[0]
			}

			transport, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer transport.Close()

			dirs, files, err := transport.Browse(cmd.Context(), layout.RelPath{Part: part, Folder: layout.FolderRoot, Tail: tail})
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Type", "Name"})
			for _, d := range dirs {
				table.Append([]string{"dir", d})
			}
			for _, f := range files {
				table.Append([]string{"file", f})
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&partFlag, "part", "base", "Config part to browse (base,interface,server,comm,web)")
	return cmd
}

func newProfilesCmd(profilesPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List configured connection profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := config.LoadConnectionProfiles(*profilesPath)
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Name", "Host", "Port", "Instance", "Username"})
			for _, p := range profiles {
				table.Append([]string{p.Name, p.Host, fmt.Sprint(p.Port), p.InstanceName, p.Username})
			}
			table.Render()
			return nil
		},
	}
	return cmd
}
