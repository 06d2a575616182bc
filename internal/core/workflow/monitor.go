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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the wait loop that bridges the asynchronous gap between submitting a
// Rekognition job and its results becoming available.
package workflow

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// MonitorState names one phase of the wait loop, for logging and for tests
// asserting on the transition sequence.
type MonitorState string

const (
	StateStarted MonitorState = "STARTED" // Loop entered, nothing polled yet.
	StatePolling MonitorState = "POLLING" // One poll attempt in flight.
	StateWaiting MonitorState = "WAITING" // Sleeping out the interval before the next attempt.
	StateDone    MonitorState = "DONE"    // A qualifying completion message was observed.
	StateFailed  MonitorState = "FAILED"  // Attempt budget exhausted or the context was canceled.
)

// JobMonitor is a command that repeatedly runs an inner poll command until
// the awaited job completes, the attempt budget runs out, or the context is
// canceled. It is a plain state machine: STARTED, then alternating POLLING
// and WAITING, terminating in DONE or FAILED.
//
// The monitor owns cadence and budget only. What one poll means, and what
// qualifies as completion, is entirely the inner command's business, which
// is what lets tests drive the loop with a fake poller.
type JobMonitor struct {
	cor.BaseCommand
	poller      cor.Command   // Inner command executed once per attempt.
	interval    time.Duration // Fixed delay between attempts.
	maxAttempts int           // Attempt budget before FAILED.
	state       MonitorState  // Current phase, exposed for tests.
}

// NewJobMonitor is the constructor for the JobMonitor command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - poller: The command executed once per attempt. Its output parameter
//     must yield a `*model.PollResult`.
//   - interval: The delay between attempts.
//   - maxAttempts: The attempt budget. Values below one become one.
//
// Outputs:
//   - *JobMonitor: A pointer to the newly instantiated command.
func NewJobMonitor(name string, poller cor.Command, interval time.Duration, maxAttempts int) *JobMonitor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &JobMonitor{
		BaseCommand: *cor.NewBaseCommand(name),
		poller:      poller,
		interval:    interval,
		maxAttempts: maxAttempts,
		state:       StateStarted,
	}
}

// State returns the monitor's current phase.
func (m *JobMonitor) State() MonitorState {
	return m.state
}

// transition records a phase change.
func (m *JobMonitor) transition(context cor.Context, to MonitorState, attempt int) {
	m.state = to
	slog.DebugContext(context.GetContext(), "monitor state transition",
		"command", m.GetName(),
		"state", string(to),
		"attempt", attempt)
}

// Execute runs the wait loop. The successful PollResult is placed on the
// monitor's output parameter, so in a chain it pipes straight into the
// result fetcher.
//
// Inputs:
//   - context: The shared `cor.Context`, holding the awaited job id as a
//     string in the input parameter.
func (m *JobMonitor) Execute(context cor.Context) {
	jobID := context.Get(m.GetInputParam()).(string)
	m.transition(context, StateStarted, 0)

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		m.transition(context, StatePolling, attempt)
		context.Add(m.poller.GetInputParam(), jobID)
		m.poller.Execute(context)
		if context.HasErrors() {
			// The poller recorded the specifics; the loop only marks the
			// terminal phase.
			m.transition(context, StateFailed, attempt)
			m.GetErrorCounter().Add(context.GetContext(), 1)
			return
		}

		if result, ok := context.Get(m.poller.GetOutputParam()).(*model.PollResult); ok && result.Done() {
			m.transition(context, StateDone, attempt)
			m.GetSuccessCounter().Add(context.GetContext(), 1)
			context.Add(m.GetOutputParam(), result)
			return
		}

		if attempt == m.maxAttempts {
			break
		}
		m.transition(context, StateWaiting, attempt)
		select {
		case <-time.After(m.interval):
		case <-context.GetContext().Done():
			m.transition(context, StateFailed, attempt)
			m.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(m.GetName(), context.GetContext().Err())
			return
		}
	}

	m.transition(context, StateFailed, m.maxAttempts)
	m.GetErrorCounter().Add(context.GetContext(), 1)
	context.AddError(m.GetName(), fmt.Errorf("job %s did not complete within %d poll attempts", jobID, m.maxAttempts))
}
