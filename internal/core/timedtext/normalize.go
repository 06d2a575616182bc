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

// Package timedtext compiles timestamped detection records into a timed
// subtitle track. This file is the normalizer: it maps the three
// heterogeneous Rekognition record shapes into one canonical TimedMetadata
// sequence.
//
// Logic Flow, identical for all three shapes:
//  1. A shape-specific filter drops records that cannot be rendered as an
//     overlay (no boxes, or an implied hierarchical label).
//  2. Surviving records are folded in order against the last emitted group:
//     a record whose timestamp equals the last group's timestamp appends its
//     object to that group; any other timestamp starts a new group.
//
// The fold only merges consecutive records. Two records sharing a timestamp
// but separated by a different timestamp produce two separate groups. That
// matches how the results are actually ordered by the service and keeps the
// normalizer a single pass; callers should not rely on global timestamp
// uniqueness in the output.
//
// Malformed or absent optional fields are never an error here; the record
// simply fails its filter and is skipped.
package timedtext

import (
	"strconv"

	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// TaggedObject is one detected entity inside a cue payload: an optional
// stable identity, a display name, and the normalized boxes locating it.
// The JSON field names are the cue wire format and must stay lowercase.
type TaggedObject struct {
	ID    string              `json:"id,omitempty"`
	Name  string              `json:"name"`
	Boxes []model.BoundingBox `json:"boxes"`
}

// TimedMetadata is the canonical grouping of every object detected at one
// timestamp. Duration is in milliseconds; zero means no intrinsic duration
// and lets the cue synthesizer pick the span.
type TimedMetadata struct {
	Timestamp int64
	Duration  int64
	Objects   []TaggedObject
}

// appendObject folds one object into the group sequence: append to the last
// group when the timestamp matches it, otherwise start a new group.
func appendObject(groups []*TimedMetadata, timestamp int64, duration int64, obj TaggedObject) []*TimedMetadata {
	if n := len(groups); n > 0 && groups[n-1].Timestamp == timestamp {
		groups[n-1].Objects = append(groups[n-1].Objects, obj)
		return groups
	}
	return append(groups, &TimedMetadata{
		Timestamp: timestamp,
		Duration:  duration,
		Objects:   []TaggedObject{obj},
	})
}

// labelDuration resolves a label record's intrinsic duration: the explicit
// DurationMillis when present and non-zero, else the span from the later of
// StartTimestampMillis and Timestamp up to EndTimestampMillis when an end is
// known, else zero (no intrinsic duration).
func labelDuration(record model.LabelDetection) int64 {
	if record.DurationMillis != nil && *record.DurationMillis != 0 {
		return *record.DurationMillis
	}
	if record.EndTimestampMillis == nil || *record.EndTimestampMillis == 0 {
		return 0
	}
	start := record.Timestamp
	if record.StartTimestampMillis != nil && *record.StartTimestampMillis > start {
		start = *record.StartTimestampMillis
	}
	return *record.EndTimestampMillis - start
}

// FromLabelDetections normalizes label detection records. Only leaf labels
// are kept: the record must carry at least one instance bounding box and its
// label must have no parent categories.
func FromLabelDetections(records []model.LabelDetection) []*TimedMetadata {
	var groups []*TimedMetadata
	for _, record := range records {
		label := record.Label
		if label == nil || len(label.Instances) == 0 || len(label.Parents) > 0 {
			continue
		}
		boxes := make([]model.BoundingBox, 0, len(label.Instances))
		for _, instance := range label.Instances {
			if instance.BoundingBox != nil {
				boxes = append(boxes, *instance.BoundingBox)
			}
		}
		name := ""
		if label.Name != nil {
			name = *label.Name
		}
		groups = appendObject(groups, record.Timestamp, labelDuration(record), TaggedObject{
			Name:  name,
			Boxes: boxes,
		})
	}
	return groups
}

// FromPersonDetections normalizes person tracking records. Only records with
// a face bounding box are kept; the person index becomes both the identity
// and the display name.
func FromPersonDetections(records []model.PersonDetection) []*TimedMetadata {
	var groups []*TimedMetadata
	for _, record := range records {
		person := record.Person
		if person == nil || person.Face == nil || person.Face.BoundingBox == nil {
			continue
		}
		index := strconv.FormatInt(person.Index, 10)
		groups = appendObject(groups, record.Timestamp, 0, TaggedObject{
			ID:    index,
			Name:  "Person-" + index,
			Boxes: []model.BoundingBox{*person.Face.BoundingBox},
		})
	}
	return groups
}

// FromCelebrityRecognitions normalizes celebrity recognition records. Only
// records with a face bounding box are kept.
func FromCelebrityRecognitions(records []model.CelebrityRecognition) []*TimedMetadata {
	var groups []*TimedMetadata
	for _, record := range records {
		celebrity := record.Celebrity
		if celebrity == nil || celebrity.Face == nil || celebrity.Face.BoundingBox == nil {
			continue
		}
		id, name := "", ""
		if celebrity.Id != nil {
			id = *celebrity.Id
		}
		if celebrity.Name != nil {
			name = *celebrity.Name
		}
		groups = appendObject(groups, record.Timestamp, 0, TaggedObject{
			ID:    id,
			Name:  name,
			Boxes: []model.BoundingBox{*celebrity.Face.BoundingBox},
		})
	}
	return groups
}

// Normalize dispatches a result set to the shape-specific normalizer.
func Normalize(results *model.DetectionResults) []*TimedMetadata {
	switch results.Kind {
	case model.JobKindPerson:
		return FromPersonDetections(results.Persons)
	case model.JobKindCelebrity:
		return FromCelebrityRecognitions(results.Celebrities)
	default:
		return FromLabelDetections(results.Labels)
	}
}
