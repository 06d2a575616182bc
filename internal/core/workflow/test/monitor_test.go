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

// This file tests the completion wait loop: the state machine that drives a
// poll command on a fixed cadence until the job completes, the attempt
// budget runs out, or the run is canceled. A scripted fake poller stands in
// for the queue so the loop's transitions are fully deterministic.
package workflow_test

import (
	gocontext "context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
	"github.com/mediaops/aws-go-video-overlay/internal/core/workflow"
)

// scriptedPoller is a cor.Command that plays back a fixed sequence of poll
// results, one per Execute call, and records the job id it was asked about.
type scriptedPoller struct {
	cor.BaseCommand
	results []*model.PollResult
	err     error
	calls   int
	jobIDs  []string
}

func newScriptedPoller(results ...*model.PollResult) *scriptedPoller {
	return &scriptedPoller{
		BaseCommand: *cor.NewBaseCommand("scripted-poller"),
		results:     results,
	}
}

func (p *scriptedPoller) Execute(context cor.Context) {
	p.jobIDs = append(p.jobIDs, context.Get(p.GetInputParam()).(string))
	if p.err != nil {
		context.AddError(p.GetName(), p.err)
		return
	}
	result := p.results[p.calls%len(p.results)]
	p.calls++
	context.Add(p.GetOutputParam(), result)
}

// pending returns a poll result for an attempt that saw no completion.
func pending() *model.PollResult {
	return &model.PollResult{}
}

// completed returns a poll result carrying a qualifying completion message.
func completed(jobID string) *model.PollResult {
	return &model.PollResult{
		MessageCount: 1,
		Messages:     []model.CompletionMessage{{JobID: jobID, Status: model.StatusSucceeded}},
		JobID:        jobID,
	}
}

// newMonitorContext binds a fresh chain context to the suite's root context.
func newMonitorContext() cor.Context {
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(ctx)
	return chCtx
}

// TestMonitorCompletes verifies the loop polls until the completion shows
// up, lands in DONE, and pipes the successful result to its output.
func TestMonitorCompletes(t *testing.T) {
	poller := newScriptedPoller(pending(), pending(), completed("job-123"))
	monitor := workflow.NewJobMonitor("await", poller, time.Millisecond, 10)

	chCtx := newMonitorContext()
	chCtx.Add(cor.CtxIn, "job-123")
	monitor.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Equal(t, workflow.StateDone, monitor.State())
	assert.Equal(t, 3, poller.calls)
	assert.Equal(t, []string{"job-123", "job-123", "job-123"}, poller.jobIDs)

	result := chCtx.Get(cor.CtxOut).(*model.PollResult)
	assert.True(t, result.Done())
	assert.Equal(t, "job-123", result.JobID)
}

// TestMonitorExhaustsBudget verifies the loop fails once the attempt budget
// is spent on pending polls.
func TestMonitorExhaustsBudget(t *testing.T) {
	poller := newScriptedPoller(pending())
	monitor := workflow.NewJobMonitor("await", poller, time.Millisecond, 3)

	chCtx := newMonitorContext()
	chCtx.Add(cor.CtxIn, "job-456")
	monitor.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.Equal(t, workflow.StateFailed, monitor.State())
	assert.Equal(t, 3, poller.calls)
	assert.ErrorContains(t, chCtx.GetErrors()["await"], "did not complete within 3 poll attempts")
}

// TestMonitorStopsOnPollerError verifies a poller failure ends the loop
// immediately instead of burning the remaining attempts.
func TestMonitorStopsOnPollerError(t *testing.T) {
	poller := newScriptedPoller(pending())
	poller.err = errors.New("queue receive failed")
	monitor := workflow.NewJobMonitor("await", poller, time.Millisecond, 10)

	chCtx := newMonitorContext()
	chCtx.Add(cor.CtxIn, "job-789")
	monitor.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.Equal(t, workflow.StateFailed, monitor.State())
	assert.Equal(t, 1, len(poller.jobIDs))
}

// TestMonitorHonorsCancellation verifies a canceled run interrupts the
// interval sleep rather than waiting it out.
func TestMonitorHonorsCancellation(t *testing.T) {
	poller := newScriptedPoller(pending())
	monitor := workflow.NewJobMonitor("await", poller, time.Hour, 10)

	runCtx, cancel := gocontext.WithCancel(ctx)
	chCtx := cor.NewBaseContext()
	chCtx.SetContext(runCtx)
	chCtx.Add(cor.CtxIn, "job-000")

	done := make(chan struct{})
	go func() {
		monitor.Execute(chCtx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}
	assert.True(t, chCtx.HasErrors())
	assert.Equal(t, workflow.StateFailed, monitor.State())
}

// TestMonitorFloorsAttemptBudget verifies a non-positive budget still
// yields one attempt.
func TestMonitorFloorsAttemptBudget(t *testing.T) {
	poller := newScriptedPoller(completed("job-111"))
	monitor := workflow.NewJobMonitor("await", poller, time.Millisecond, 0)

	chCtx := newMonitorContext()
	chCtx.Add(cor.CtxIn, "job-111")
	monitor.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Equal(t, workflow.StateDone, monitor.State())
	assert.Equal(t, 1, poller.calls)
}
