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
	"strings"
	"testing"

	"github.com/mediaops/aws-go-video-overlay/internal/core/timedtext"
	"github.com/stretchr/testify/assert"
)

// TestFormatTimestamp verifies padding and unit carries, in particular that
// milliseconds just under and just over a minute render correctly.
func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00.000", timedtext.FormatTimestamp(0))
	assert.Equal(t, "00:00:01.500", timedtext.FormatTimestamp(1500))
	assert.Equal(t, "00:00:59.999", timedtext.FormatTimestamp(59_999))
	assert.Equal(t, "00:01:00.499", timedtext.FormatTimestamp(60_499))
	assert.Equal(t, "01:02:03.004", timedtext.FormatTimestamp(3_723_004))
}

// TestRenderTrack verifies the full document layout for a two-cue track:
// header, blank line before every cue, index line, timing line, single-line
// JSON payload, and exactly one trailing newline.
func TestRenderTrack(t *testing.T) {
	cues := []timedtext.Cue{
		{
			Index:     0,
			StartTime: 1000,
			EndTime:   1500,
			Objects: []timedtext.TaggedObject{
				{ID: "3", Name: "Person-3", Boxes: nil},
			},
		},
		{
			Index:     1,
			StartTime: 59_999,
			EndTime:   60_499,
			Objects:   []timedtext.TaggedObject{{Name: "Dog", Boxes: nil}},
		},
	}

	doc, err := timedtext.RenderTrack(cues)

	assert.NoError(t, err)
	expected := strings.Join([]string{
		"WEBVTT",
		"",
		"0",
		"00:00:01.000 --> 00:00:01.500",
		`[{"id":"3","name":"Person-3","boxes":null}]`,
		"",
		"1",
		"00:00:59.999 --> 00:01:00.499",
		`[{"name":"Dog","boxes":null}]`,
		"",
	}, "\n")
	assert.Equal(t, expected, doc)
}

// TestRenderTrackEmpty verifies that an empty cue list still yields a valid
// document consisting of just the header.
func TestRenderTrackEmpty(t *testing.T) {
	doc, err := timedtext.RenderTrack(nil)

	assert.NoError(t, err)
	assert.Equal(t, "WEBVTT\n", doc)
}

// TestRenderTrackNoHTMLEscaping verifies that object names containing HTML
// metacharacters pass through unescaped, since the payload is parsed as JSON
// by the viewer and never injected into markup.
func TestRenderTrackNoHTMLEscaping(t *testing.T) {
	cues := []timedtext.Cue{
		{Index: 0, StartTime: 0, EndTime: 500, Objects: []timedtext.TaggedObject{
			{Name: "R&D <Lab>"},
		}},
	}

	doc, err := timedtext.RenderTrack(cues)

	assert.NoError(t, err)
	assert.Contains(t, doc, `"R&D <Lab>"`)
	assert.NotContains(t, doc, `\u003c`)
	assert.NotContains(t, doc, `\u0026`)
}

// TestRenderViewer verifies that the player page embeds the video and track
// paths it was given.
func TestRenderViewer(t *testing.T) {
	page, err := timedtext.RenderViewer("./hls/clip.m3u8", "./clip.vtt")

	assert.NoError(t, err)
	assert.Contains(t, page, `src="./hls/clip.m3u8"`)
	assert.Contains(t, page, `src="./clip.vtt"`)
	assert.Contains(t, page, "cuechange")
}
