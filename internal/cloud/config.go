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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the AWS services the pipeline depends on: S3 buckets, the SQS
// completion queue, the SNS notification topic, and the Rekognition job
// families.
//
// This file centralizes all configuration-related structs, making it easy
// to understand and manage the application's configurable parameters.
//
// Structs:
//   - Storage: Input/output S3 bucket names.
//   - Notifications: SQS queue and SNS topic wiring for job completion events.
//   - RekognitionJob: Per job-family tuning (confidence floor, API rate limit).
//   - Workflow: Poll cadence for the completion wait loop.
//   - Config: The top-level struct that aggregates all other configuration structs.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

// Storage represents the configuration for the S3 buckets the pipeline
// reads videos from and writes artifacts to.
type Storage struct {
	InputBucket  string `toml:"input_bucket"`  // The bucket holding source videos submitted for analysis.
	OutputBucket string `toml:"output_bucket"` // The bucket receiving raw detection dumps, .vtt tracks, and viewer pages.
}

// Notifications represents the configuration for the completion-notification
// path: Rekognition publishes to an SNS topic, the topic fans into an SQS
// queue, and the poller reads that queue.
type Notifications struct {
	QueueURL        string `toml:"queue_url"`         // The URL of the SQS queue that receives job completion messages.
	TopicARN        string `toml:"topic_arn"`         // The ARN of the SNS topic Rekognition posts completion status to.
	PublishRoleARN  string `toml:"publish_role_arn"`  // The ARN of the IAM role that lets Rekognition publish to the topic.
	WaitTimeSeconds int32  `toml:"wait_time_seconds"` // Long-poll wait for each SQS receive. Zero keeps receives best-effort.
}

// RekognitionJob holds the per job-family settings. The pipeline runs one
// of three job families (label detection, person tracking, celebrity
// recognition), each with its own API quota.
type RekognitionJob struct {
	MinConfidence float32 `toml:"min_confidence"` // The minimum detection confidence Rekognition should return, 0-100.
	RateLimit     int     `toml:"rate_limit"`     // The maximum Get/Start calls per second against this job family's APIs.
}

// Workflow configures the completion wait loop: how long to sleep between
// poll attempts and how many attempts to make before declaring the job lost.
type Workflow struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"` // Fixed delay between poller invocations.
	MaxPollAttempts     int `toml:"max_poll_attempts"`     // Upper bound on poll attempts before the monitor fails the run.
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name   string `toml:"name"`   // The name of the application, used as the telemetry service name.
		Region string `toml:"region"` // The AWS region all service clients are constructed for.
	} `toml:"application"`
	Storage       Storage                   `toml:"storage"`       // S3 bucket configuration.
	Notifications Notifications             `toml:"notifications"` // SQS/SNS completion wiring.
	Jobs          map[string]RekognitionJob `toml:"jobs"`          // Rekognition job families keyed by kind ("label", "person", "celebrity").
	Workflow      Workflow                  `toml:"workflow"`      // Poll loop cadence.
}

// NewConfig is a constructor function that creates a new, initialized Config instance.
// It's important to initialize the maps within the struct to avoid nil pointer panics
// when the configuration loader tries to populate them.
//
// Outputs:
//   - *Config: A pointer to a new Config struct with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		Jobs: make(map[string]RekognitionJob),
	}
}
