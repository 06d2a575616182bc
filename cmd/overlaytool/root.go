// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mediaops/aws-go-video-overlay/internal/cloud"
	"github.com/mediaops/aws-go-video-overlay/internal/telemetry"
)

// commandContext carries the lazily initialized config and service clients
// shared by every subcommand.
type commandContext struct {
	runtimeFlag *string
	config      *cloud.Config
	clients     *cloud.ServiceClients
}

// ensure loads the configuration and constructs the AWS clients on first
// use. Subcommands call it from their RunE, so `overlaytool help` never
// touches the environment.
func (c *commandContext) ensure(ctx context.Context) error {
	if c.clients != nil {
		return nil
	}
	if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
		return err
	}
	if err := os.Setenv(cloud.EnvConfigRuntime, *c.runtimeFlag); err != nil {
		return err
	}
	config := cloud.NewConfig()
	cloud.LoadConfig(&config)
	c.config = config

	clients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to construct service clients: %w", err)
	}
	c.clients = clients
	return nil
}

func newRootCommand() *cobra.Command {
	var runtimeFlag string

	cmdCtx := &commandContext{runtimeFlag: &runtimeFlag}

	rootCmd := &cobra.Command{
		Use:           "overlaytool",
		Short:         "Run and inspect video overlay pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.SetupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&runtimeFlag, "runtime", "local", "Runtime name selecting the .env.<runtime>.toml overrides")

	rootCmd.AddCommand(newRunCommand(cmdCtx))
	rootCmd.AddCommand(newArtifactsCommand(cmdCtx))

	return rootCmd
}
