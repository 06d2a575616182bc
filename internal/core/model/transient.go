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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains the in-memory shapes that flow between
// workflow commands: the typed pipeline event validated once at the
// boundary, the poll result returned by the completion-queue correlator, and
// the assembled artifact bundle handed to the publisher. None of these are
// persisted; they live for one workflow execution and are discarded.
package model

import (
	"encoding/json"
	"errors"
)

// StatusSucceeded is the terminal status a completion notification must
// carry for a job to be considered done.
const StatusSucceeded = "SUCCEEDED"

// Boundary validation errors. Each names the exact event field that was
// missing so workflow failures are attributable without digging through
// payload dumps.
var (
	ErrMissingVideoName      = errors.New("input.videoS3Object.Name is not specified")
	ErrMissingVideoDuration  = errors.New("input.videoMetadata.DurationMillis is not defined")
	ErrMissingDetectionsName = errors.New("output.rekognitionS3Object.Name is not specified")
)

// S3ObjectRef names one object by key. The containing event establishes the
// bucket.
type S3ObjectRef struct {
	Name string `json:"Name"`
}

// PipelineInput is the event that triggers subtitle compilation: the source
// video and its metadata on the input side, the raw detection dump reference
// on the output side. It is decoded loosely and then validated exactly once
// with Validate; downstream code may assume a validated event is fully
// populated.
type PipelineInput struct {
	Input struct {
		VideoS3Object *S3ObjectRef   `json:"videoS3Object"`
		VideoMetadata *VideoMetadata `json:"videoMetadata"`
	} `json:"input"`
	Output struct {
		RekognitionS3Object *S3ObjectRef `json:"rekognitionS3Object"`
	} `json:"output"`
}

// Validate checks the three required event fields, returning the specific
// boundary error for the first one missing. A zero DurationMillis counts as
// missing: a subtitle track cannot be timed against an unknown duration.
func (e *PipelineInput) Validate() error {
	if e.Input.VideoS3Object == nil || e.Input.VideoS3Object.Name == "" {
		return ErrMissingVideoName
	}
	if e.Input.VideoMetadata == nil || e.Input.VideoMetadata.DurationMillis == 0 {
		return ErrMissingVideoDuration
	}
	if e.Output.RekognitionS3Object == nil || e.Output.RekognitionS3Object.Name == "" {
		return ErrMissingDetectionsName
	}
	return nil
}

// PipelineResult is the terminal output of one overlay run: the source video
// key and the two artifact keys written to the output bucket.
type PipelineResult struct {
	Video string `json:"video"`
	VTT   string `json:"vtt"`
	HTML  string `json:"html"`
}

// VideoDescriptor is the video reference inside a completion notification.
type VideoDescriptor struct {
	S3ObjectName string `json:"S3ObjectName"`
	S3Bucket     string `json:"S3Bucket"`
}

// CompletionMessage is the inner notification payload Rekognition publishes
// when a job finishes. It arrives double-encoded: the SQS body is an SNS
// envelope whose Message field is this struct as a JSON string.
type CompletionMessage struct {
	JobID     string           `json:"JobId"`
	Status    string           `json:"Status"`
	API       string           `json:"API,omitempty"`
	Timestamp int64            `json:"Timestamp,omitempty"`
	Video     *VideoDescriptor `json:"Video,omitempty"`
}

// SNSEnvelope is the outer SNS delivery wrapper around a completion message.
// Message holds the inner payload as an encoded JSON string.
type SNSEnvelope struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	TopicARN  string `json:"TopicArn"`
	Message   string `json:"Message"`
	Timestamp string `json:"Timestamp"`
}

// PollResult is the outcome of one poll attempt against the completion
// queue. MessageCount is 0 or 1: the poller returns on the first message
// whose JobId and Status qualify and never accumulates more. The shape is
// returned fresh on every invocation; re-polling after a match is harmless
// because matching inspects each batch independently.
type PollResult struct {
	MessageCount int                 `json:"MessageCount"`
	Messages     []CompletionMessage `json:"Messages"`
	JobID        string              `json:"JobId,omitempty"`
}

// Done reports whether the poll observed a qualifying completion message.
func (p *PollResult) Done() bool {
	return p.MessageCount > 0 && len(p.Messages) > 0
}

// SubtitleArtifacts bundles the compiled documents with the keys they should
// be stored under.
type SubtitleArtifacts struct {
	Video    string // Source video key.
	VTTKey   string // Output key for the subtitle track.
	HTMLKey  string // Output key for the viewer page.
	VTT      string // The WebVTT document.
	HTML     string // The viewer HTML document.
	CueCount int    // Number of cues in the track, for logging.
}

// DecodeCompletionMessage unwraps one raw queue body: parse the SNS
// envelope, then parse its Message string. Either layer failing returns an
// error; callers treat that as a skippable malformed record, not a failure.
func DecodeCompletionMessage(body string) (*CompletionMessage, error) {
	var envelope SNSEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, err
	}
	var message CompletionMessage
	if err := json.Unmarshal([]byte(envelope.Message), &message); err != nil {
		return nil, err
	}
	return &message, nil
}
