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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// entry command of the overlay workflow: submitting a video to Rekognition.
//
// Logic Flow:
//  1. The command receives a simplified S3 object reference describing the
//     uploaded video from the context.
//  2. It validates that the object looks like an MP4, the only container the
//     downstream HLS packaging handles.
//  3. It submits the asynchronous Rekognition job for its configured job
//     family, passing the SNS topic and role so the service announces
//     completion, and a fresh idempotency token so retried submissions do
//     not start duplicate jobs.
//  4. The returned job id is placed on the context; the wait loop uses it to
//     match completion messages on the queue.
package commands

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rekognitiontypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/google/uuid"

	"github.com/mediaops/aws-go-video-overlay/internal/cloud"
	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// StartVideoAnalysis is a command that submits one asynchronous Rekognition
// job for a source video and outputs the job id.
type StartVideoAnalysis struct {
	cor.BaseCommand
	kind          model.JobKind        // Which job family to start.
	client        cloud.RekognitionAPI // Rate-limited Rekognition client.
	notifications *cloud.Notifications // SNS completion channel settings.
	minConfidence float32              // Confidence floor for label jobs.
}

// NewStartVideoAnalysis is the constructor for the StartVideoAnalysis command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - kind: The Rekognition job family to submit.
//   - client: The rate-limited Rekognition client to submit through.
//   - config: The application configuration holding the notification channel
//     and per-family confidence floor.
//
// Outputs:
//   - *StartVideoAnalysis: A pointer to the newly instantiated command.
func NewStartVideoAnalysis(
	name string,
	kind model.JobKind,
	client cloud.RekognitionAPI,
	config *cloud.Config,
) *StartVideoAnalysis {
	return &StartVideoAnalysis{
		BaseCommand:   *cor.NewBaseCommand(name),
		kind:          kind,
		client:        client,
		notifications: &config.Notifications,
		minConfidence: config.Jobs[string(kind)].MinConfidence,
	}
}

// Execute submits the Rekognition job for the video on the context.
//
// Inputs:
//   - context: The shared `cor.Context`, holding a `*cloud.S3Object` for the
//     uploaded video in the input parameter.
func (c *StartVideoAnalysis) Execute(context cor.Context) {
	video := context.Get(c.GetInputParam()).(*cloud.S3Object)

	if !strings.HasSuffix(strings.ToLower(video.Name), ".mp4") {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("unsupported video container for %q, expected .mp4", video.Name))
		return
	}

	// The notification channel tells Rekognition where to publish the
	// completion message the wait loop listens for.
	channel := &rekognitiontypes.NotificationChannel{
		SNSTopicArn: aws.String(c.notifications.TopicARN),
		RoleArn:     aws.String(c.notifications.PublishRoleARN),
	}
	source := &rekognitiontypes.Video{
		S3Object: &rekognitiontypes.S3Object{
			Bucket: aws.String(video.Bucket),
			Name:   aws.String(video.Name),
		},
	}
	token := aws.String(uuid.NewString())

	var jobID *string
	var err error
	switch c.kind {
	case model.JobKindPerson:
		var out *rekognition.StartPersonTrackingOutput
		out, err = c.client.StartPersonTracking(context.GetContext(), &rekognition.StartPersonTrackingInput{
			Video:               source,
			ClientRequestToken:  token,
			NotificationChannel: channel,
		})
		if out != nil {
			jobID = out.JobId
		}
	case model.JobKindCelebrity:
		var out *rekognition.StartCelebrityRecognitionOutput
		out, err = c.client.StartCelebrityRecognition(context.GetContext(), &rekognition.StartCelebrityRecognitionInput{
			Video:               source,
			ClientRequestToken:  token,
			NotificationChannel: channel,
		})
		if out != nil {
			jobID = out.JobId
		}
	default:
		var out *rekognition.StartLabelDetectionOutput
		out, err = c.client.StartLabelDetection(context.GetContext(), &rekognition.StartLabelDetectionInput{
			Video:               source,
			ClientRequestToken:  token,
			NotificationChannel: channel,
			MinConfidence:       aws.Float32(c.minConfidence),
		})
		if out != nil {
			jobID = out.JobId
		}
	}
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to start %s job for %q: %w", c.kind, video.Name, err))
		return
	}
	if jobID == nil || *jobID == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("rekognition accepted the %s job for %q but returned no job id", c.kind, video.Name))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), *jobID)
}
