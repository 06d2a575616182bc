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

package timedtext_test

import (
	"testing"

	"github.com/mediaops/aws-go-video-overlay/internal/core/timedtext"
	"github.com/stretchr/testify/assert"
)

// group builds a timestamp group with a single placeholder object.
func group(timestamp, duration int64) *timedtext.TimedMetadata {
	return &timedtext.TimedMetadata{
		Timestamp: timestamp,
		Duration:  duration,
		Objects:   []timedtext.TaggedObject{{Name: "obj"}},
	}
}

// TestSynthesizeDefaultSpans verifies the end-time rules on a dense track:
// a cue runs to the next group's start when that is closer than the default
// span, and the last cue is clamped by the video duration only when the
// video ends inside the default span.
func TestSynthesizeDefaultSpans(t *testing.T) {
	groups := []*timedtext.TimedMetadata{
		group(1000, 0),
		group(1800, 0),
	}

	cues := timedtext.Synthesize(groups, 10_000)

	assert.Equal(t, 2, len(cues))
	// 1000 + 500 < 1800, so the default span wins over the successor.
	assert.Equal(t, int64(1000), cues[0].StartTime)
	assert.Equal(t, int64(1500), cues[0].EndTime)
	// Last cue: 1800 + 500 < 10000, default span again.
	assert.Equal(t, int64(1800), cues[1].StartTime)
	assert.Equal(t, int64(2300), cues[1].EndTime)
	assert.Equal(t, 0, cues[0].Index)
	assert.Equal(t, 1, cues[1].Index)
}

// TestSynthesizeSuccessorCutsSpan verifies that a successor closer than the
// default span truncates the cue, so consecutive cues never overlap.
func TestSynthesizeSuccessorCutsSpan(t *testing.T) {
	groups := []*timedtext.TimedMetadata{
		group(1000, 0),
		group(1200, 0),
	}

	cues := timedtext.Synthesize(groups, 10_000)

	assert.Equal(t, int64(1200), cues[0].EndTime)
	assert.Equal(t, int64(1700), cues[1].EndTime)
}

// TestSynthesizeIntrinsicDuration verifies that a group with an intrinsic
// duration keeps it even when it overlaps the successor or runs past the end
// of the video.
func TestSynthesizeIntrinsicDuration(t *testing.T) {
	groups := []*timedtext.TimedMetadata{
		group(1000, 3000),
		group(1500, 0),
	}

	cues := timedtext.Synthesize(groups, 2000)

	assert.Equal(t, int64(4000), cues[0].EndTime)
	// Last cue clamped by the 2000ms video.
	assert.Equal(t, int64(2000), cues[1].EndTime)
}

// TestSynthesizeVideoEndClamp verifies the last-cue clamp against the video
// duration.
func TestSynthesizeVideoEndClamp(t *testing.T) {
	cues := timedtext.Synthesize([]*timedtext.TimedMetadata{group(9800, 0)}, 10_000)

	assert.Equal(t, 1, len(cues))
	assert.Equal(t, int64(10_000), cues[0].EndTime)
}

// TestSynthesizeEmpty verifies that no groups yield no cues, not a nil
// slice panic downstream.
func TestSynthesizeEmpty(t *testing.T) {
	cues := timedtext.Synthesize(nil, 10_000)
	assert.Equal(t, 0, len(cues))
}
