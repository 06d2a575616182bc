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

// This file defines the terminal command of the overlay workflow: uploading
// the compiled subtitle artifacts to the output bucket.
//
// Logic Flow:
//  1. The command receives the compiled SubtitleArtifacts from the context.
//  2. The WebVTT track is uploaded under its .vtt key and the viewer page
//     under its .html key. The content types carry an explicit UTF-8
//     charset; browsers refuse cross-origin track elements whose MIME type
//     is not exactly text/vtt.
//  3. The command outputs the PipelineResult naming the video and both
//     artifact keys. That result is the workflow's terminal value, returned
//     to API callers polling the job.
package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// Artifact content types. The charset suffix is load-bearing for the track.
const (
	ContentTypeVTT  = "text/vtt; charset=UTF-8"
	ContentTypeHTML = "text/html; charset=UTF-8"
)

// PublishSubtitleArtifacts is a command that uploads the compiled track and
// viewer page and outputs the terminal PipelineResult.
type PublishSubtitleArtifacts struct {
	cor.BaseCommand
	client BlobPutter // S3 client for the output bucket.
	bucket string     // Output bucket name.
}

// NewPublishSubtitleArtifacts is the constructor for the PublishSubtitleArtifacts command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The S3 client to upload through.
//   - bucket: The output bucket receiving the artifacts.
//
// Outputs:
//   - *PublishSubtitleArtifacts: A pointer to the newly instantiated command.
func NewPublishSubtitleArtifacts(name string, client BlobPutter, bucket string) *PublishSubtitleArtifacts {
	return &PublishSubtitleArtifacts{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		bucket:      bucket,
	}
}

// Execute uploads both artifacts for the compilation on the context.
//
// Inputs:
//   - context: The shared `cor.Context`, holding the
//     `*model.SubtitleArtifacts` in the input parameter.
func (c *PublishSubtitleArtifacts) Execute(context cor.Context) {
	artifacts := context.Get(c.GetInputParam()).(*model.SubtitleArtifacts)

	uploads := []struct {
		key         string
		body        string
		contentType string
	}{
		{artifacts.VTTKey, artifacts.VTT, ContentTypeVTT},
		{artifacts.HTMLKey, artifacts.HTML, ContentTypeHTML},
	}
	for _, upload := range uploads {
		_, err := c.client.PutObject(context.GetContext(), &s3.PutObjectInput{
			Bucket:      aws.String(c.bucket),
			Key:         aws.String(upload.key),
			Body:        strings.NewReader(upload.body),
			ContentType: aws.String(upload.contentType),
		})
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("failed to upload s3://%s/%s: %w", c.bucket, upload.key, err))
			return
		}
		slog.InfoContext(context.GetContext(), "uploaded subtitle artifact",
			"command", c.GetName(),
			"bucket", c.bucket,
			"key", upload.key,
			"content_type", upload.contentType)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &model.PipelineResult{
		Video: artifacts.Video,
		VTT:   artifacts.VTTKey,
		HTML:  artifacts.HTMLKey,
	})
}
