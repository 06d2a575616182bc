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

package commands_test

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"

	"github.com/mediaops/aws-go-video-overlay/internal/core/commands"
	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
	test "github.com/mediaops/aws-go-video-overlay/internal/testutil"
)

// receiveOutput wraps raw bodies as one SQS receive batch.
func receiveOutput(bodies ...string) *sqs.ReceiveMessageOutput {
	out := &sqs.ReceiveMessageOutput{}
	for i, body := range bodies {
		out.Messages = append(out.Messages, sqstypes.Message{
			Body:          aws.String(body),
			ReceiptHandle: aws.String(fmt.Sprintf("receipt-%d", i)),
		})
	}
	return out
}

// TestPollMatch verifies that a qualifying completion message is reported
// from a single receive call. The poller only observes the queue: fakeQueue
// deliberately implements nothing beyond ReceiveMessage, so any
// acknowledgment creeping into the command fails to compile here.
func TestPollMatch(t *testing.T) {
	queue := &fakeQueue{outputs: []*sqs.ReceiveMessageOutput{
		receiveOutput(test.GetTestCompletionMessageText("job-123")),
	}}
	poller := commands.NewPollCompletionQueue("poll", queue, "queue-url", 0)

	ctx := newTestContext()
	ctx.Add(cor.CtxIn, "job-123")
	poller.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	result := ctx.Get(cor.CtxOut).(*model.PollResult)
	assert.True(t, result.Done())
	assert.Equal(t, 1, result.MessageCount)
	assert.Equal(t, "job-123", result.JobID)
	assert.Equal(t, model.StatusSucceeded, result.Messages[0].Status)
	assert.Equal(t, 1, queue.calls)
}

// TestPollJobMismatch verifies that a completion for a different job is
// ignored and left on the queue.
func TestPollJobMismatch(t *testing.T) {
	queue := &fakeQueue{outputs: []*sqs.ReceiveMessageOutput{
		receiveOutput(test.GetTestCompletionMessageText("some-other-job")),
	}}
	poller := commands.NewPollCompletionQueue("poll", queue, "queue-url", 0)

	ctx := newTestContext()
	ctx.Add(cor.CtxIn, "job-123")
	poller.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	result := ctx.Get(cor.CtxOut).(*model.PollResult)
	assert.False(t, result.Done())
}

// TestPollSkipsMalformed verifies that malformed bodies on the queue are
// skipped without failing the poll and without hiding a later match in the
// same batch.
func TestPollSkipsMalformed(t *testing.T) {
	queue := &fakeQueue{outputs: []*sqs.ReceiveMessageOutput{
		receiveOutput(
			"not json at all",
			`{"Type":"Notification","Message":"inner is not json"}`,
			test.GetTestCompletionMessageText("job-123"),
		),
	}}
	poller := commands.NewPollCompletionQueue("poll", queue, "queue-url", 0)

	ctx := newTestContext()
	ctx.Add(cor.CtxIn, "job-123")
	poller.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	result := ctx.Get(cor.CtxOut).(*model.PollResult)
	assert.True(t, result.Done())
	assert.Equal(t, "job-123", result.Messages[0].JobID)
}

// TestPollEmptyQueue verifies that an empty receive yields a pending
// result, not an error.
func TestPollEmptyQueue(t *testing.T) {
	queue := &fakeQueue{}
	poller := commands.NewPollCompletionQueue("poll", queue, "queue-url", 0)

	ctx := newTestContext()
	ctx.Add(cor.CtxIn, "job-123")
	poller.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	result := ctx.Get(cor.CtxOut).(*model.PollResult)
	assert.False(t, result.Done())
}

// TestPollReceiveError verifies that a failed receive is recorded as a
// command error.
func TestPollReceiveError(t *testing.T) {
	queue := &fakeQueue{err: fmt.Errorf("queue unavailable")}
	poller := commands.NewPollCompletionQueue("poll", queue, "queue-url", 0)

	ctx := newTestContext()
	ctx.Add(cor.CtxIn, "job-123")
	poller.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Nil(t, ctx.Get(cor.CtxOut))
}
