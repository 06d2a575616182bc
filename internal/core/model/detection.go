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
// This file models the three raw detection-record shapes produced by the
// Rekognition video APIs: label detections, person tracking records, and
// celebrity recognitions. The structs mirror the JSON the service emits:
// field names are preserved exactly (including the PascalCase bounding box
// fields) because the same names flow uninterpreted into the subtitle cue
// payloads and the raw result dumps stored in S3.
//
// Optional upstream fields are pointers; a nil pointer means the service
// omitted the value, which is never an error at this layer.
package model

// JobKind identifies which Rekognition job family produced a result set.
type JobKind string

const (
	JobKindLabel     JobKind = "label"
	JobKindPerson    JobKind = "person"
	JobKindCelebrity JobKind = "celebrity"
)

// FileSuffix returns the suffix used when the raw detection dump for this
// job family is written to the output bucket.
func (k JobKind) FileSuffix() string {
	switch k {
	case JobKindPerson:
		return "persons"
	case JobKindCelebrity:
		return "celebrities"
	default:
		return "labels"
	}
}

// BoundingBox is a normalized rectangle locating a detection within the
// frame. All four values are fractions of the frame dimensions in [0,1].
// The field names are the upstream API's and must not be renamed: viewer
// clients read them straight out of cue payloads.
type BoundingBox struct {
	Left   *float64 `json:"Left,omitempty"`
	Top    *float64 `json:"Top,omitempty"`
	Width  *float64 `json:"Width,omitempty"`
	Height *float64 `json:"Height,omitempty"`
}

// LabelDetection is one timestamped label observation. Labels are the only
// shape that may carry an explicit duration or start/end timestamps.
type LabelDetection struct {
	Timestamp            int64  `json:"Timestamp"`
	DurationMillis       *int64 `json:"DurationMillis,omitempty"`
	StartTimestampMillis *int64 `json:"StartTimestampMillis,omitempty"`
	EndTimestampMillis   *int64 `json:"EndTimestampMillis,omitempty"`
	Label                *Label `json:"Label,omitempty"`
}

// Label carries the detected label plus its instance boxes and parent
// categories. A label with parents is an implied (hierarchical) detection;
// only leaf labels with explicit instances become cues.
type Label struct {
	Name       *string         `json:"Name,omitempty"`
	Confidence *float64        `json:"Confidence,omitempty"`
	Instances  []LabelInstance `json:"Instances,omitempty"`
	Parents    []Parent        `json:"Parents,omitempty"`
}

// LabelInstance is one concrete occurrence of a label within the frame.
type LabelInstance struct {
	BoundingBox *BoundingBox `json:"BoundingBox,omitempty"`
	Confidence  *float64     `json:"Confidence,omitempty"`
}

// Parent names a broader category a label belongs to.
type Parent struct {
	Name *string `json:"Name,omitempty"`
}

// PersonDetection is one timestamped person-tracking observation.
type PersonDetection struct {
	Timestamp int64         `json:"Timestamp"`
	Person    *PersonDetail `json:"Person,omitempty"`
}

// PersonDetail identifies a tracked person. Index is stable for one person
// across the whole video.
type PersonDetail struct {
	Index       int64        `json:"Index"`
	BoundingBox *BoundingBox `json:"BoundingBox,omitempty"`
	Face        *FaceDetail  `json:"Face,omitempty"`
}

// FaceDetail holds the face box for a tracked person or recognized celebrity.
type FaceDetail struct {
	BoundingBox *BoundingBox `json:"BoundingBox,omitempty"`
	Confidence  *float64     `json:"Confidence,omitempty"`
}

// CelebrityRecognition is one timestamped celebrity observation.
type CelebrityRecognition struct {
	Timestamp int64            `json:"Timestamp"`
	Celebrity *CelebrityDetail `json:"Celebrity,omitempty"`
}

// CelebrityDetail identifies a recognized celebrity. Id is stable across the
// whole video (and across videos, since it is the catalog identity).
type CelebrityDetail struct {
	Id         *string     `json:"Id,omitempty"`
	Name       *string     `json:"Name,omitempty"`
	Confidence *float64    `json:"Confidence,omitempty"`
	Face       *FaceDetail `json:"Face,omitempty"`
}

// VideoMetadata describes the analyzed video as reported alongside results.
type VideoMetadata struct {
	Codec          *string  `json:"Codec,omitempty"`
	DurationMillis int64    `json:"DurationMillis"`
	Format         *string  `json:"Format,omitempty"`
	FrameRate      *float64 `json:"FrameRate,omitempty"`
	FrameHeight    *int64   `json:"FrameHeight,omitempty"`
	FrameWidth     *int64   `json:"FrameWidth,omitempty"`
}

// RekognitionS3Object is the source-video reference reported with results.
type RekognitionS3Object struct {
	Bucket *string `json:"Bucket,omitempty"`
	Name   *string `json:"Name,omitempty"`
}

// DetectionResults is the flattened union of every result page for one job:
// exactly one of the three record slices is populated, matching Kind. The
// two accompanying metadata fields are captured from the first page that
// carries them.
type DetectionResults struct {
	Kind         JobKind
	Labels       []LabelDetection
	Persons      []PersonDetection
	Celebrities  []CelebrityRecognition
	SourceObject *RekognitionS3Object
	Metadata     *VideoMetadata
}

// Records returns the populated record collection as an opaque value for
// serialization, preserving the upstream JSON shape of each family.
func (r *DetectionResults) Records() interface{} {
	switch r.Kind {
	case JobKindPerson:
		return r.Persons
	case JobKindCelebrity:
		return r.Celebrities
	default:
		return r.Labels
	}
}

// Count returns the number of flattened records.
func (r *DetectionResults) Count() int {
	switch r.Kind {
	case JobKindPerson:
		return len(r.Persons)
	case JobKindCelebrity:
		return len(r.Celebrities)
	default:
		return len(r.Labels)
	}
}

// DetectionPage is one page of results from a Get* call, already converted
// to the internal shapes. Empty reports a defensive stop: the service
// answered but the primary collection field was absent.
type DetectionPage struct {
	Labels       []LabelDetection
	Persons      []PersonDetection
	Celebrities  []CelebrityRecognition
	SourceObject *RekognitionS3Object
	Metadata     *VideoMetadata
	NextToken    *string
	Empty        bool
}
