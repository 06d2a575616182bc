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

// Package timedtext_test contains unit tests for the detection normalizers:
// the per-shape filters, the timestamp grouping fold, and the label duration
// resolution rules.
package timedtext_test

import (
	"testing"

	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
	"github.com/mediaops/aws-go-video-overlay/internal/core/timedtext"
	"github.com/stretchr/testify/assert"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }
func ptrS(v string) *string   { return &v }

// box builds a normalized bounding box with all four coordinates set.
func box(left, top, width, height float64) *model.BoundingBox {
	return &model.BoundingBox{
		Left:   ptrF(left),
		Top:    ptrF(top),
		Width:  ptrF(width),
		Height: ptrF(height),
	}
}

// labelRecord builds a label detection with one instance box and no parents,
// which passes the leaf-label filter.
func labelRecord(timestamp int64, name string) model.LabelDetection {
	return model.LabelDetection{
		Timestamp: timestamp,
		Label: &model.Label{
			Name:       ptrS(name),
			Confidence: ptrF(99.0),
			Instances: []model.LabelInstance{
				{BoundingBox: box(0.1, 0.2, 0.3, 0.4), Confidence: ptrF(98.0)},
			},
		},
	}
}

// TestFromLabelDetectionsFilters verifies that only renderable leaf labels
// survive: records without instances are dropped (nothing to draw), and
// records with parent categories are dropped (the leaf record for the same
// region carries the more specific name).
func TestFromLabelDetectionsFilters(t *testing.T) {
	records := []model.LabelDetection{
		// No instances: an abstract label like "Outdoors", skipped.
		{Timestamp: 0, Label: &model.Label{Name: ptrS("Outdoors")}},
		// Has instances but also parents: a non-leaf like "Sedan" under
		// "Car", skipped.
		{Timestamp: 0, Label: &model.Label{
			Name:      ptrS("Sedan"),
			Instances: []model.LabelInstance{{BoundingBox: box(0, 0, 1, 1)}},
			Parents:   []model.Parent{{Name: ptrS("Car")}},
		}},
		// Leaf with an instance: kept.
		labelRecord(1000, "Dog"),
		// Nil label: skipped.
		{Timestamp: 1000},
	}

	groups := timedtext.FromLabelDetections(records)

	assert.Equal(t, 1, len(groups))
	assert.Equal(t, int64(1000), groups[0].Timestamp)
	assert.Equal(t, 1, len(groups[0].Objects))
	assert.Equal(t, "Dog", groups[0].Objects[0].Name)
	assert.Equal(t, "", groups[0].Objects[0].ID)
	assert.Equal(t, 1, len(groups[0].Objects[0].Boxes))
}

// TestFromLabelDetectionsGrouping verifies the single-pass fold: consecutive
// records at the same timestamp merge into one group, but a timestamp that
// reappears after a different one starts a fresh group rather than merging
// back into the earlier one.
func TestFromLabelDetectionsGrouping(t *testing.T) {
	records := []model.LabelDetection{
		labelRecord(1000, "Dog"),
		labelRecord(1000, "Cat"),
		labelRecord(2000, "Car"),
		// Same timestamp as the first two, but not adjacent to them.
		labelRecord(1000, "Bird"),
	}

	groups := timedtext.FromLabelDetections(records)

	assert.Equal(t, 3, len(groups))
	assert.Equal(t, int64(1000), groups[0].Timestamp)
	assert.Equal(t, 2, len(groups[0].Objects))
	assert.Equal(t, "Dog", groups[0].Objects[0].Name)
	assert.Equal(t, "Cat", groups[0].Objects[1].Name)
	assert.Equal(t, int64(2000), groups[1].Timestamp)
	assert.Equal(t, int64(1000), groups[2].Timestamp)
	assert.Equal(t, "Bird", groups[2].Objects[0].Name)
}

// TestLabelDurationResolution verifies the duration precedence on label
// records: an explicit non-zero DurationMillis wins, otherwise the span up
// to EndTimestampMillis from the later of the start timestamp and the record
// timestamp, otherwise zero.
func TestLabelDurationResolution(t *testing.T) {
	// Explicit duration.
	explicit := labelRecord(1000, "Dog")
	explicit.DurationMillis = ptrI(750)
	// Derived from start/end.
	derived := labelRecord(5000, "Cat")
	derived.StartTimestampMillis = ptrI(5200)
	derived.EndTimestampMillis = ptrI(6000)
	// End present but record timestamp is later than the start field.
	lateSample := labelRecord(9000, "Car")
	lateSample.StartTimestampMillis = ptrI(8000)
	lateSample.EndTimestampMillis = ptrI(9500)
	// A zero duration field behaves as absent.
	zeroDuration := labelRecord(12000, "Bird")
	zeroDuration.DurationMillis = ptrI(0)

	groups := timedtext.FromLabelDetections([]model.LabelDetection{
		explicit, derived, lateSample, zeroDuration,
	})

	assert.Equal(t, 4, len(groups))
	assert.Equal(t, int64(750), groups[0].Duration)
	assert.Equal(t, int64(800), groups[1].Duration)
	assert.Equal(t, int64(500), groups[2].Duration)
	assert.Equal(t, int64(0), groups[3].Duration)
}

// TestFromPersonDetections verifies the face filter and the synthesized
// identity: the person index becomes the object id and a "Person-<index>"
// display name, and the face box becomes the single rendered box.
func TestFromPersonDetections(t *testing.T) {
	records := []model.PersonDetection{
		// No face box: skipped even though the person has a body box.
		{Timestamp: 0, Person: &model.PersonDetail{Index: 0, BoundingBox: box(0, 0, 1, 1)}},
		{Timestamp: 500, Person: &model.PersonDetail{
			Index: 3,
			Face:  &model.FaceDetail{BoundingBox: box(0.4, 0.1, 0.1, 0.2)},
		}},
		{Timestamp: 500, Person: &model.PersonDetail{
			Index: 7,
			Face:  &model.FaceDetail{BoundingBox: box(0.6, 0.1, 0.1, 0.2)},
		}},
		// Nil person: skipped.
		{Timestamp: 500},
	}

	groups := timedtext.FromPersonDetections(records)

	assert.Equal(t, 1, len(groups))
	assert.Equal(t, int64(500), groups[0].Timestamp)
	assert.Equal(t, int64(0), groups[0].Duration)
	assert.Equal(t, 2, len(groups[0].Objects))
	assert.Equal(t, "3", groups[0].Objects[0].ID)
	assert.Equal(t, "Person-3", groups[0].Objects[0].Name)
	assert.Equal(t, "7", groups[0].Objects[1].ID)
	assert.Equal(t, "Person-7", groups[0].Objects[1].Name)
}

// TestFromCelebrityRecognitions verifies that celebrity records keep their
// service-assigned id and name and that records without a face box are
// dropped.
func TestFromCelebrityRecognitions(t *testing.T) {
	records := []model.CelebrityRecognition{
		{Timestamp: 100, Celebrity: &model.CelebrityDetail{
			Id:   ptrS("2mW0ej"),
			Name: ptrS("Grace Hopper"),
			Face: &model.FaceDetail{BoundingBox: box(0.2, 0.2, 0.3, 0.3)},
		}},
		// Face present but no box: skipped.
		{Timestamp: 100, Celebrity: &model.CelebrityDetail{
			Id:   ptrS("9xK1ab"),
			Name: ptrS("Unknown"),
			Face: &model.FaceDetail{},
		}},
	}

	groups := timedtext.FromCelebrityRecognitions(records)

	assert.Equal(t, 1, len(groups))
	assert.Equal(t, 1, len(groups[0].Objects))
	assert.Equal(t, "2mW0ej", groups[0].Objects[0].ID)
	assert.Equal(t, "Grace Hopper", groups[0].Objects[0].Name)
}

// TestNormalizeDispatch verifies that Normalize routes a result set to the
// normalizer matching its job kind.
func TestNormalizeDispatch(t *testing.T) {
	results := &model.DetectionResults{
		Kind: model.JobKindPerson,
		Persons: []model.PersonDetection{
			{Timestamp: 0, Person: &model.PersonDetail{
				Index: 1,
				Face:  &model.FaceDetail{BoundingBox: box(0, 0, 0.5, 0.5)},
			}},
		},
	}

	groups := timedtext.Normalize(results)

	assert.Equal(t, 1, len(groups))
	assert.Equal(t, "Person-1", groups[0].Objects[0].Name)
}
