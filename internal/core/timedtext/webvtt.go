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

package timedtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FormatTimestamp renders milliseconds as a WebVTT timestamp, HH:MM:SS.mmm,
// each component zero-padded. Hours widen past two digits for pathological
// inputs; real tracks never get close.
func FormatTimestamp(millis int64) string {
	hours := millis / 3_600_000
	minutes := (millis % 3_600_000) / 60_000
	seconds := millis % 60_000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds/1000, seconds%1000)
}

// RenderTrack serializes cues as a WebVTT document. Each cue payload is a
// single-line JSON array of the cue's objects, consumed by the viewer page
// rather than displayed as text. HTML escaping is disabled so names survive
// byte for byte.
//
// The document always starts with the WEBVTT header and ends with a single
// trailing newline; an empty cue list yields just the header.
func RenderTrack(cues []Cue) (string, error) {
	var b strings.Builder
	b.WriteString("WEBVTT\n")
	for _, cue := range cues {
		payload, err := encodeObjects(cue.Objects)
		if err != nil {
			return "", fmt.Errorf("failed to encode cue %d payload: %w", cue.Index, err)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d\n", cue.Index)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(cue.StartTime), FormatTimestamp(cue.EndTime))
		b.WriteString(payload)
		b.WriteString("\n")
	}
	return b.String(), nil
}

func encodeObjects(objects []TaggedObject) (string, error) {
	if objects == nil {
		objects = []TaggedObject{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(objects); err != nil {
		return "", err
	}
	// Encode appends its own newline; the caller controls line endings.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
