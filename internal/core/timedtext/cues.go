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

// DefaultSpanMillis caps how long a cue without an intrinsic duration stays
// on screen. Detections arrive as point samples, so without a cap a sparse
// track would leave stale boxes rendered for seconds.
const DefaultSpanMillis = 500

// Cue is one subtitle entry: a zero-based index, a half-open time window in
// milliseconds, and the objects visible during that window.
type Cue struct {
	Index     int
	StartTime int64
	EndTime   int64
	Objects   []TaggedObject
}

// Synthesize converts timestamp groups into cues by assigning each group an
// end time. Precedence per group:
//
//  1. An intrinsic duration wins: end = start + duration.
//  2. The last group is clamped to the video: end = min(videoDuration,
//     start + DefaultSpanMillis).
//  3. Otherwise the cue runs until the next group or the default span,
//     whichever comes first: end = min(next start, start + DefaultSpanMillis).
//
// Rule 3 makes a cue end exactly when its successor begins whenever samples
// are closer together than the default span, so dense tracks never overlap.
// A successor at the same timestamp yields a zero-length cue, which WebVTT
// permits; it is kept so the cue indices stay aligned with the groups.
func Synthesize(groups []*TimedMetadata, videoDurationMillis int64) []Cue {
	cues := make([]Cue, 0, len(groups))
	for i, group := range groups {
		start := group.Timestamp
		var end int64
		switch {
		case group.Duration > 0:
			end = start + group.Duration
		case i == len(groups)-1:
			end = min64(videoDurationMillis, start+DefaultSpanMillis)
		default:
			end = min64(groups[i+1].Timestamp, start+DefaultSpanMillis)
		}
		cues = append(cues, Cue{
			Index:     i,
			StartTime: start,
			EndTime:   end,
			Objects:   group.Objects,
		})
	}
	return cues
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
