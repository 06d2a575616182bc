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

// This file defines the command that persists a drained result set as a
// JSON dump in the output bucket and emits the event that triggers subtitle
// compilation.
//
// Logic Flow:
//  1. The command receives the flattened DetectionResults from the context.
//  2. The raw records are serialized and written to the output bucket under
//     "<video key>.<family suffix>.json", e.g. "clip.mp4.persons.json". The
//     dump is the durable record of the analysis; the subtitle builder
//     reads it back rather than holding the records in memory across
//     stages.
//  3. The command then assembles the PipelineInput event pointing at the
//     source video, its metadata, and the dump it just wrote. That event is
//     the sole input of the subtitle builder.
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// BlobPutter is the subset of the S3 client the writing commands use. The
// concrete *s3.Client satisfies it; tests substitute fakes that capture the
// uploads.
type BlobPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// StoreDetectionResults is a command that writes the raw detection dump and
// outputs the PipelineInput event for the subtitle builder.
type StoreDetectionResults struct {
	cor.BaseCommand
	client BlobPutter // S3 client for the output bucket.
	bucket string     // Output bucket name.
}

// NewStoreDetectionResults is the constructor for the StoreDetectionResults command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The S3 client to write through.
//   - bucket: The output bucket receiving the dump.
//
// Outputs:
//   - *StoreDetectionResults: A pointer to the newly instantiated command.
func NewStoreDetectionResults(name string, client BlobPutter, bucket string) *StoreDetectionResults {
	return &StoreDetectionResults{
		BaseCommand: *cor.NewBaseCommand(name),
		client:      client,
		bucket:      bucket,
	}
}

// Execute writes the dump and emits the compilation event.
//
// Inputs:
//   - context: The shared `cor.Context`, holding the
//     `*model.DetectionResults` in the input parameter.
func (c *StoreDetectionResults) Execute(context cor.Context) {
	results := context.Get(c.GetInputParam()).(*model.DetectionResults)

	if results.SourceObject == nil || results.SourceObject.Name == nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("result set carries no source video reference"))
		return
	}
	videoKey := *results.SourceObject.Name
	dumpKey := fmt.Sprintf("%s.%s.json", videoKey, results.Kind.FileSuffix())

	body, err := json.MarshalIndent(results.Records(), "", "  ")
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to serialize %s records: %w", results.Kind, err))
		return
	}

	_, err = c.client.PutObject(context.GetContext(), &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(dumpKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to store detection dump s3://%s/%s: %w", c.bucket, dumpKey, err))
		return
	}
	slog.InfoContext(context.GetContext(), "stored detection dump",
		"command", c.GetName(),
		"bucket", c.bucket,
		"key", dumpKey,
		"records", results.Count())

	event := &model.PipelineInput{}
	event.Input.VideoS3Object = &model.S3ObjectRef{Name: videoKey}
	event.Input.VideoMetadata = results.Metadata
	event.Output.RekognitionS3Object = &model.S3ObjectRef{Name: dumpKey}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), event)
}
