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

// This file implements the primary overlay workflow: from an uploaded video
// to a published WebVTT track and viewer page.
package workflow

import (
	"time"

	"github.com/mediaops/aws-go-video-overlay/internal/cloud"
	"github.com/mediaops/aws-go-video-overlay/internal/core/commands"
	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// OverlayWorkflow orchestrates one end-to-end subtitle run for a single
// Rekognition job family. It is structured as a Chain of Responsibility
// (cor.Chain): each stage's output pipes into the next, and the chain stops
// at the first recorded error.
//
// The workflow is triggered with a `*cloud.S3Object` describing the
// uploaded video and terminates with a `*model.PipelineResult` naming the
// published artifacts.
type OverlayWorkflow struct {
	cor.BaseCommand
	config  *cloud.Config
	clients *cloud.ServiceClients
	kind    model.JobKind
	chain   cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the entire overlay workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (w *OverlayWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this
// workflow. Each command is an atomic unit of work whose output becomes the
// input of the next. This method is called by the constructor.
func (w *OverlayWorkflow) initializeChain() {
	rekognitionClient := w.clients.Rekognition[string(w.kind)]
	outputBucket := w.config.Storage.OutputBucket

	out := cor.NewBaseChain(w.GetName())

	// Step 1: Submit the asynchronous Rekognition job for this family.
	// Output: the job id to wait on.
	out.AddCommand(commands.NewStartVideoAnalysis("start-video-analysis", w.kind, rekognitionClient, w.config))

	// Step 2: Wait for the job's completion message on the SQS queue. The
	// monitor drives a single-shot poll command on the configured cadence
	// until the message arrives or the attempt budget runs out.
	// Output: the successful poll result carrying the job id.
	poller := commands.NewPollCompletionQueue(
		"poll-completion-queue",
		w.clients.SQSClient,
		w.config.Notifications.QueueURL,
		w.config.Notifications.WaitTimeSeconds)
	out.AddCommand(NewJobMonitor(
		"await-job-completion",
		poller,
		time.Duration(w.config.Workflow.PollIntervalSeconds)*time.Second,
		w.config.Workflow.MaxPollAttempts))

	// Step 3: Drain every result page for the finished job into one
	// flattened record set, capturing the source object and video metadata
	// from the first page that carries them.
	out.AddCommand(commands.NewFetchDetectionResults(
		"fetch-detection-results",
		w.kind,
		commands.NewResultFetcher(w.kind, rekognitionClient)))

	// Step 4: Persist the raw records as the durable detection dump and
	// emit the compilation event pointing at the video and the dump.
	out.AddCommand(commands.NewStoreDetectionResults("store-detection-results", w.clients.S3Client, outputBucket))

	// Step 5: Compile the dump into the WebVTT track and the viewer page.
	out.AddCommand(commands.NewBuildSubtitleArtifacts("build-subtitle-artifacts", w.kind, w.clients.S3Client, outputBucket))

	// Step 6: Upload both artifacts and report the terminal result.
	out.AddCommand(commands.NewPublishSubtitleArtifacts("publish-subtitle-artifacts", w.clients.S3Client, outputBucket))

	w.chain = out
}

// NewOverlayPipeline is the constructor for the OverlayWorkflow.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for AWS services.
//   - kind: The Rekognition job family this pipeline runs.
//
// Returns:
//   - A pointer to a newly created and fully initialized OverlayWorkflow.
func NewOverlayPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	kind model.JobKind) *OverlayWorkflow {

	pipeline := &OverlayWorkflow{
		BaseCommand: *cor.NewBaseCommand(string(kind) + "-overlay-pipeline"),
		config:      config,
		clients:     serviceClients,
		kind:        kind,
	}
	pipeline.initializeChain()
	return pipeline
}
