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

// Package test provides utility functions and mock data to support the
// application's test suite. It helps in setting up a consistent test
// environment, loading test-specific configurations, and providing sample
// queue and detection payloads for workflows and services.
package test

import (
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/mediaops/aws-go-video-overlay/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are not reloaded for
// every test.
type StateManager struct {
	config *cloud.Config
}

// state holds the singleton instance of StateManager, ensuring that the
// configuration is loaded only once per test run.
var state = &StateManager{}

// HandleErr is a simple test helper that checks if an error is not nil and
// fails the test when it is. A convenience to reduce boilerplate
// error-checking code in tests.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestCompletionMessageText returns a JSON string simulating the SQS
// body for a successful Rekognition job: the SNS delivery envelope with the
// completion payload double-encoded in its Message field. Used to test the
// completion queue poller and the wait loop.
//
// Inputs:
//   - jobID: The job id embedded in the inner payload.
//
// Returns:
//   - A string containing the JSON body of a completion notification.
func GetTestCompletionMessageText(jobID string) string {
	return fmt.Sprintf(`{
  "Type": "Notification",
  "MessageId": "0a72f5a8-ec9f-4b68-9cbd-7d3bd8a3e6a1",
  "TopicArn": "arn:aws:sns:us-east-1:123456789012:video-overlay-completion",
  "Message": "{\"JobId\":\"%s\",\"Status\":\"SUCCEEDED\",\"API\":\"StartPersonTracking\",\"Timestamp\":1728615848664,\"Video\":{\"S3ObjectName\":\"test-trailer-001.mp4\",\"S3Bucket\":\"video-overlay-input\"}}",
  "Timestamp": "2024-10-11T03:04:08.672Z"
}`, jobID)
}

// GetTestPersonDumpText returns a JSON string simulating a stored person
// tracking dump with two samples of one person, face boxes included. Used
// to test the subtitle builder end to end without S3.
//
// Returns:
//   - A string containing the JSON detection dump.
func GetTestPersonDumpText() string {
	return `[
  {
    "Timestamp": 1000,
    "Person": {
      "Index": 0,
      "BoundingBox": { "Left": 0.1, "Top": 0.2, "Width": 0.3, "Height": 0.6 },
      "Face": {
        "BoundingBox": { "Left": 0.15, "Top": 0.22, "Width": 0.1, "Height": 0.12 },
        "Confidence": 99.1
      }
    }
  },
  {
    "Timestamp": 1800,
    "Person": {
      "Index": 0,
      "Face": {
        "BoundingBox": { "Left": 0.18, "Top": 0.21, "Width": 0.1, "Height": 0.12 },
        "Confidence": 98.7
      }
    }
  }
]`
}

// SetupOS configures the environment variables the configuration loader
// depends on, directing it to the test-specific configuration files (e.g.,
// `configs/.env.test.toml`).
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// The loader looks for ".env.test.toml" overrides under this runtime.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. It loads
// the TOML files once and caches the result for subsequent calls. This is
// the primary way tests should retrieve their configuration.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
