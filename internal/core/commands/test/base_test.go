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

// Package commands_test contains unit tests for the pipeline commands.
// This file provides the shared fakes standing in for the AWS clients, so
// every command runs against controlled responses and no test needs an
// account.
package commands_test

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// newTestContext builds a chain context bound to a background Go context.
func newTestContext() cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	return ctx
}

// fakeQueue is a QueueReceiver returning scripted receive outputs in order.
type fakeQueue struct {
	outputs []*sqs.ReceiveMessageOutput
	err     error
	calls   int
}

func (f *fakeQueue) ReceiveMessage(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &sqs.ReceiveMessageOutput{}
	if f.calls < len(f.outputs) {
		out = f.outputs[f.calls]
	}
	f.calls++
	return out, nil
}

// fakePager is a ResultFetcher serving scripted pages keyed by token.
type fakePager struct {
	pages  []*model.DetectionPage
	calls  int
	jobIDs []string
}

func (f *fakePager) FetchPage(_ context.Context, jobID string, _ *string) (*model.DetectionPage, error) {
	f.jobIDs = append(f.jobIDs, jobID)
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

// fakeBlobStore is a BlobGetter and BlobPutter over an in-memory map.
type fakeBlobStore struct {
	objects      map[string]string
	puts         []capturedPut
	getErr       error
	missingIsErr bool
}

type capturedPut struct {
	bucket      string
	key         string
	body        string
	contentType string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string]string)}
}

func (f *fakeBlobStore) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[*params.Key]
	if !ok {
		if f.missingIsErr {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeBlobStore) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	var buf bytes.Buffer
	if params.Body != nil {
		_, _ = buf.ReadFrom(params.Body)
	}
	put := capturedPut{body: buf.String()}
	if params.Bucket != nil {
		put.bucket = *params.Bucket
	}
	if params.Key != nil {
		put.key = *params.Key
	}
	if params.ContentType != nil {
		put.contentType = *params.ContentType
	}
	f.puts = append(f.puts, put)
	f.objects[put.key] = put.body
	return &s3.PutObjectOutput{}, nil
}

// fakeRekognition is a RekognitionAPI recording submissions and serving
// scripted get responses. Only the methods a given test exercises need
// scripted data.
type fakeRekognition struct {
	startedLabel     []*rekognition.StartLabelDetectionInput
	startedPerson    []*rekognition.StartPersonTrackingInput
	startedCelebrity []*rekognition.StartCelebrityRecognitionInput
	jobID            string
}

func (f *fakeRekognition) StartLabelDetection(_ context.Context, params *rekognition.StartLabelDetectionInput, _ ...func(*rekognition.Options)) (*rekognition.StartLabelDetectionOutput, error) {
	f.startedLabel = append(f.startedLabel, params)
	return &rekognition.StartLabelDetectionOutput{JobId: &f.jobID}, nil
}

func (f *fakeRekognition) StartPersonTracking(_ context.Context, params *rekognition.StartPersonTrackingInput, _ ...func(*rekognition.Options)) (*rekognition.StartPersonTrackingOutput, error) {
	f.startedPerson = append(f.startedPerson, params)
	return &rekognition.StartPersonTrackingOutput{JobId: &f.jobID}, nil
}

func (f *fakeRekognition) StartCelebrityRecognition(_ context.Context, params *rekognition.StartCelebrityRecognitionInput, _ ...func(*rekognition.Options)) (*rekognition.StartCelebrityRecognitionOutput, error) {
	f.startedCelebrity = append(f.startedCelebrity, params)
	return &rekognition.StartCelebrityRecognitionOutput{JobId: &f.jobID}, nil
}

func (f *fakeRekognition) GetLabelDetection(_ context.Context, _ *rekognition.GetLabelDetectionInput, _ ...func(*rekognition.Options)) (*rekognition.GetLabelDetectionOutput, error) {
	return &rekognition.GetLabelDetectionOutput{}, nil
}

func (f *fakeRekognition) GetPersonTracking(_ context.Context, _ *rekognition.GetPersonTrackingInput, _ ...func(*rekognition.Options)) (*rekognition.GetPersonTrackingOutput, error) {
	return &rekognition.GetPersonTrackingOutput{}, nil
}

func (f *fakeRekognition) GetCelebrityRecognition(_ context.Context, _ *rekognition.GetCelebrityRecognitionInput, _ ...func(*rekognition.Options)) (*rekognition.GetCelebrityRecognitionOutput, error) {
	return &rekognition.GetCelebrityRecognitionOutput{}, nil
}
