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
	"log"
	"log/slog"
	"os"

	"github.com/mediaops/aws-go-video-overlay/internal/cloud"
	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
	"github.com/mediaops/aws-go-video-overlay/internal/core/services"
)

type StateManager struct {
	// ctx is the server's root context. Background runs derive from it, not
	// from the HTTP request that started them: net/http cancels the request
	// context as soon as the 202 response is written, while a run keeps
	// polling long after.
	ctx             context.Context
	config          *cloud.Config
	cloud           *cloud.ServiceClients
	artifactService *services.ArtifactService
	jobs            *services.JobRegistry
}

var state = &StateManager{}

func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		// Create a default cloud config
		config := cloud.NewConfig()
		// Load it from the TOML files
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

func InitState(ctx context.Context) {
	config := GetConfig()
	state.ctx = ctx

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	state.artifactService = &services.ArtifactService{
		Lister:    cloudClients.S3Client,
		Presigner: cloudClients.PresignClient,
		Bucket:    config.Storage.OutputBucket,
	}
	state.jobs = services.NewJobRegistry()
}

// RunJob launches one overlay pipeline in the background and keeps the job
// registry in sync with its outcome. The caller supplies a fresh pipeline
// per run (the wait loop inside it carries per-run state) and a context
// that outlives the run, normally the server root context.
func RunJob(ctx context.Context, pipeline cor.Command, video *cloud.S3Object, kind model.JobKind) *services.Run {
	run := state.jobs.Create(video.Name, kind)

	go func() {
		chainCtx := cor.NewBaseContext()
		chainCtx.SetContext(ctx)
		chainCtx.Add(cor.CtxIn, video)

		pipeline.Execute(chainCtx)

		if chainCtx.HasErrors() {
			for name, err := range chainCtx.GetErrors() {
				slog.ErrorContext(ctx, "overlay pipeline failed",
					"run_id", run.ID,
					"video", video.Name,
					"kind", string(kind),
					"stage", name,
					"error", err.Error())
				state.jobs.Fail(run.ID, err.Error())
				break
			}
			return
		}

		result, ok := chainCtx.Get(cor.CtxOut).(*model.PipelineResult)
		if !ok {
			state.jobs.Fail(run.ID, "pipeline terminated without a result")
			return
		}
		slog.InfoContext(ctx, "overlay pipeline complete",
			"run_id", run.ID,
			"video", result.Video,
			"vtt", result.VTT,
			"html", result.HTML)
		state.jobs.Complete(run.ID, result)
	}()

	return run
}
