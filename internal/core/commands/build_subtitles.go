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

// This file defines the command that compiles a detection dump into the two
// subtitle artifacts: the WebVTT track and the viewer page.
//
// Logic Flow:
//  1. The command receives the PipelineInput event and validates it. The
//     three required fields (video key, video duration, dump key) each have
//     a distinct boundary error so a bad event is diagnosable from the log
//     line alone.
//  2. The detection dump is read back from the output bucket. A missing or
//     empty dump downgrades to a warning and an empty record list: the run
//     still produces a valid, headers-only track so players never 404 on
//     the track element.
//  3. The records are normalized into timestamp groups, the groups are
//     synthesized into cues against the video duration, and the cues are
//     rendered as a WebVTT document.
//  4. The viewer page is rendered alongside, pointing at the HLS rendition
//     and the track by the naming convention shared with the packaging
//     step: everything derives from the video key's first dot-segment.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
	"github.com/mediaops/aws-go-video-overlay/internal/core/timedtext"
)

// BlobGetter is the subset of the S3 client the reading commands use.
type BlobGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// BuildSubtitleArtifacts is a command that turns a stored detection dump
// into a WebVTT track and a viewer page, keyed for the output bucket.
type BuildSubtitleArtifacts struct {
	cor.BaseCommand
	kind   model.JobKind // Job family, selects the dump's record shape.
	client BlobGetter    // S3 client for the output bucket.
	bucket string        // Bucket holding the detection dump.
}

// NewBuildSubtitleArtifacts is the constructor for the BuildSubtitleArtifacts command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - kind: The job family whose dump is being compiled.
//   - client: The S3 client to read the dump through.
//   - bucket: The bucket holding the dump.
//
// Outputs:
//   - *BuildSubtitleArtifacts: A pointer to the newly instantiated command.
func NewBuildSubtitleArtifacts(name string, kind model.JobKind, client BlobGetter, bucket string) *BuildSubtitleArtifacts {
	return &BuildSubtitleArtifacts{
		BaseCommand: *cor.NewBaseCommand(name),
		kind:        kind,
		client:      client,
		bucket:      bucket,
	}
}

// Execute compiles the artifacts for the event on the context.
//
// Inputs:
//   - context: The shared `cor.Context`, holding the `*model.PipelineInput`
//     event in the input parameter.
func (c *BuildSubtitleArtifacts) Execute(context cor.Context) {
	event := context.Get(c.GetInputParam()).(*model.PipelineInput)

	if err := event.Validate(); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	videoKey := event.Input.VideoS3Object.Name
	dumpKey := event.Output.RekognitionS3Object.Name

	results, err := c.readDump(context, dumpKey)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	groups := timedtext.Normalize(results)
	cues := timedtext.Synthesize(groups, event.Input.VideoMetadata.DurationMillis)
	track, err := timedtext.RenderTrack(cues)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	// The packaging step writes the HLS rendition under hls/<base>.m3u8 and
	// the publisher writes the track as <base>.vtt, so the viewer can use
	// bucket-relative paths.
	base := strings.Split(videoKey, ".")[0]
	page, err := timedtext.RenderViewer("./hls/"+base+".m3u8", "./"+base+".vtt")
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), &model.SubtitleArtifacts{
		Video:    videoKey,
		VTTKey:   base + ".vtt",
		HTMLKey:  base + ".html",
		VTT:      track,
		HTML:     page,
		CueCount: len(cues),
	})
}

// readDump fetches and decodes the detection dump. A missing key or an
// empty body yields an empty result set rather than an error.
func (c *BuildSubtitleArtifacts) readDump(context cor.Context, key string) (*model.DetectionResults, error) {
	results := &model.DetectionResults{Kind: c.kind}

	out, err := c.client.GetObject(context.GetContext(), &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			slog.WarnContext(context.GetContext(), "detection dump not found, producing an empty track",
				"command", c.GetName(),
				"bucket", c.bucket,
				"key", key)
			return results, nil
		}
		return nil, fmt.Errorf("failed to read detection dump s3://%s/%s: %w", c.bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read detection dump s3://%s/%s: %w", c.bucket, key, err)
	}
	if len(body) == 0 {
		slog.WarnContext(context.GetContext(), "detection dump is empty, producing an empty track",
			"command", c.GetName(),
			"bucket", c.bucket,
			"key", key)
		return results, nil
	}

	switch c.kind {
	case model.JobKindPerson:
		err = json.Unmarshal(body, &results.Persons)
	case model.JobKindCelebrity:
		err = json.Unmarshal(body, &results.Celebrities)
	default:
		err = json.Unmarshal(body, &results.Labels)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s dump s3://%s/%s: %w", c.kind, c.bucket, key, err)
	}
	return results, nil
}
