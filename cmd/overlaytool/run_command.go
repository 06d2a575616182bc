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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mediaops/aws-go-video-overlay/internal/cloud"
	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
	"github.com/mediaops/aws-go-video-overlay/internal/core/services"
	"github.com/mediaops/aws-go-video-overlay/internal/core/workflow"
	"github.com/mediaops/aws-go-video-overlay/internal/telemetry"
)

// newRunCommand builds the `run` subcommand: one synchronous end-to-end
// overlay pipeline for a video already present in the input bucket.
func newRunCommand(cmdCtx *commandContext) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "run <video-key>",
		Short: "Run one overlay pipeline against a video in the input bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdCtx.ensure(cmd.Context()); err != nil {
				return err
			}
			otelShutdown, err := telemetry.SetupOpenTelemetry(cmd.Context(), cmdCtx.config)
			if err != nil {
				return err
			}
			defer func() { _ = otelShutdown(cmd.Context()) }()

			kind := model.JobKind(kindFlag)
			switch kind {
			case model.JobKindLabel, model.JobKindPerson, model.JobKindCelebrity:
			default:
				return fmt.Errorf("unknown job kind %q, expected label, person, or celebrity", kindFlag)
			}

			video := &cloud.S3Object{
				Bucket:   cmdCtx.config.Storage.InputBucket,
				Name:     args[0],
				MIMEType: "video/mp4",
			}
			slog.Info("starting overlay pipeline", "video", video.Name, "kind", string(kind))

			pipeline := workflow.NewOverlayPipeline(cmdCtx.config, cmdCtx.clients, kind)
			chainCtx := cor.NewBaseContext()
			chainCtx.SetContext(cmd.Context())
			chainCtx.Add(cor.CtxIn, video)

			pipeline.Execute(chainCtx)

			if chainCtx.HasErrors() {
				var errs []error
				for stage, stageErr := range chainCtx.GetErrors() {
					errs = append(errs, fmt.Errorf("%s: %w", stage, stageErr))
				}
				return errors.Join(errs...)
			}

			result, ok := chainCtx.Get(cor.CtxOut).(*model.PipelineResult)
			if !ok {
				return fmt.Errorf("pipeline terminated without a result")
			}
			fmt.Printf("video: %s\nvtt:   %s\nhtml:  %s\n", result.Video, result.VTT, result.HTML)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", string(model.JobKindLabel), "Job family to run: label, person, or celebrity")
	return cmd
}

// newArtifactsCommand builds the `artifacts` subcommand: list the compiled
// artifacts in the output bucket, optionally with presigned download URLs.
func newArtifactsCommand(cmdCtx *commandContext) *cobra.Command {
	var signFlag bool

	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List published subtitle artifacts in the output bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdCtx.ensure(cmd.Context()); err != nil {
				return err
			}
			service := &services.ArtifactService{
				Lister:    cmdCtx.clients.S3Client,
				Presigner: cmdCtx.clients.PresignClient,
				Bucket:    cmdCtx.config.Storage.OutputBucket,
			}
			artifacts, err := service.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, artifact := range artifacts {
				line := fmt.Sprintf("%-7s %10d  %s", artifact.Kind, artifact.Size, artifact.Key)
				if signFlag {
					url, err := service.GenerateSignedURL(cmd.Context(), artifact.Key, 15*time.Minute)
					if err != nil {
						return err
					}
					line += "  " + url
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&signFlag, "sign", false, "Include a presigned download URL per artifact")
	return cmd
}
