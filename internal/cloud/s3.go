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

// Package cloud contains data structures and utilities for interacting with
// AWS services. This file defines models related to Amazon S3, including the
// structure of S3 event notifications and a simplified internal
// representation of an S3 object used throughout the workflows.
//
// Structs:
//   - S3EventNotification: Maps to the JSON payload of an S3 bucket event.
//   - S3Object: A simplified internal model for S3 objects used in processing workflows.
//
// Functions:
//   - GetS3ObjectName: Returns a constant key used for storing S3 object data in a context.
package cloud

// GetS3ObjectName returns a constant string that is used as a key within the
// Chain of Responsibility (CoR) context. This key allows different commands in
// a workflow to consistently access the `S3Object` being processed.
//
// Outputs:
//   - string: A constant placeholder string "__S3__OBJ__".
func GetS3ObjectName() string {
	return "__S3__OBJ__"
}

// S3EventNotification is the structure that maps to the JSON payload emitted
// by an S3 bucket event (e.g., ObjectCreated). Only the fields the pipeline
// inspects are modeled; the rest of the payload is ignored on decode.
type S3EventNotification struct {
	Records []struct {
		EventName string `json:"eventName"` // The S3 event type, e.g. "ObjectCreated:Put".
		S3        struct {
			Bucket struct {
				Name string `json:"name"` // The bucket the event originated from.
			} `json:"bucket"`
			Object struct {
				Key  string `json:"key"`  // The object key, URL-encoded by S3.
				Size int64  `json:"size"` // The object size in bytes.
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// S3Object is a simplified, internal representation of an Amazon S3 object.
// It distills the essential information from event payloads and API responses
// into a lightweight struct that is easy to pass between commands in a
// processing workflow.
type S3Object struct {
	Bucket   string // The name of the S3 bucket.
	Name     string // The object key.
	MIMEType string // The MIME type of the object (e.g., "video/mp4").
}
