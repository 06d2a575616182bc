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

// This file tests the job submission command: request routing per job
// family, the notification channel wiring, and the container validation.
package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediaops/aws-go-video-overlay/internal/cloud"
	"github.com/mediaops/aws-go-video-overlay/internal/core/commands"
	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// analysisConfig returns a minimal config with the notification channel and
// job-family settings the submission command reads.
func analysisConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.Notifications.TopicARN = "arn:aws:sns:us-east-1:123456789012:video-overlay-completion"
	config.Notifications.PublishRoleARN = "arn:aws:iam::123456789012:role/video-overlay-publish"
	config.Jobs["label"] = cloud.RekognitionJob{MinConfidence: 75.0, RateLimit: 5}
	config.Jobs["person"] = cloud.RekognitionJob{RateLimit: 5}
	config.Jobs["celebrity"] = cloud.RekognitionJob{RateLimit: 5}
	return config
}

func analysisInput() *cloud.S3Object {
	return &cloud.S3Object{Bucket: "video-overlay-input", Name: "test-trailer-001.mp4"}
}

// TestStartPersonTracking verifies the person family routes to
// StartPersonTracking with the source video and notification channel set,
// and that the job id flows to the output parameter.
func TestStartPersonTracking(t *testing.T) {
	client := &fakeRekognition{jobID: "job-123"}
	cmd := commands.NewStartVideoAnalysis("start", model.JobKindPerson, client, analysisConfig())

	ctx := newTestContext()
	ctx.Add(cor.CtxIn, analysisInput())
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "job-123", ctx.Get(cor.CtxOut).(string))
	assert.Equal(t, 1, len(client.startedPerson))

	params := client.startedPerson[0]
	assert.Equal(t, "video-overlay-input", *params.Video.S3Object.Bucket)
	assert.Equal(t, "test-trailer-001.mp4", *params.Video.S3Object.Name)
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:video-overlay-completion", *params.NotificationChannel.SNSTopicArn)
	assert.Equal(t, "arn:aws:iam::123456789012:role/video-overlay-publish", *params.NotificationChannel.RoleArn)
	assert.NotEmpty(t, *params.ClientRequestToken)
}

// TestStartLabelDetection verifies the label family carries the configured
// confidence floor, which the other families do not accept.
func TestStartLabelDetection(t *testing.T) {
	client := &fakeRekognition{jobID: "job-456"}
	cmd := commands.NewStartVideoAnalysis("start", model.JobKindLabel, client, analysisConfig())

	ctx := newTestContext()
	ctx.Add(cor.CtxIn, analysisInput())
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "job-456", ctx.Get(cor.CtxOut).(string))
	assert.Equal(t, 1, len(client.startedLabel))
	assert.Equal(t, float32(75.0), *client.startedLabel[0].MinConfidence)
}

// TestStartCelebrityRecognition verifies the celebrity family routing.
func TestStartCelebrityRecognition(t *testing.T) {
	client := &fakeRekognition{jobID: "job-789"}
	cmd := commands.NewStartVideoAnalysis("start", model.JobKindCelebrity, client, analysisConfig())

	ctx := newTestContext()
	ctx.Add(cor.CtxIn, analysisInput())
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "job-789", ctx.Get(cor.CtxOut).(string))
	assert.Equal(t, 1, len(client.startedCelebrity))
}

// TestStartRejectsNonMP4 verifies the container guard fires before any
// service call is made.
func TestStartRejectsNonMP4(t *testing.T) {
	client := &fakeRekognition{jobID: "job-000"}
	cmd := commands.NewStartVideoAnalysis("start", model.JobKindPerson, client, analysisConfig())

	ctx := newTestContext()
	ctx.Add(cor.CtxIn, &cloud.S3Object{Bucket: "video-overlay-input", Name: "clip.mov"})
	cmd.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Empty(t, client.startedPerson)
}
