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

// This file defines the command that performs one poll of the job
// completion queue.
//
// Logic Flow:
// Rekognition publishes a completion message to an SNS topic, which fans
// into an SQS queue. The message therefore arrives double-encoded: the SQS
// body is the SNS delivery envelope, and the envelope's Message field is
// the completion payload as a JSON string.
//
//  1. The command receives the job id it is waiting for from the context.
//  2. It performs a single ReceiveMessage call against the queue.
//  3. Each returned body is unwrapped through both JSON layers. A body that
//     fails either parse is logged and skipped, never fatal; queues carry
//     the occasional foreign or malformed record.
//  4. A message qualifies only when its JobId matches the awaited id AND its
//     Status is SUCCEEDED. The first qualifying message wins and is reported
//     in the PollResult. The poller never deletes anything; every received
//     message is left for its visibility timeout to restore, and the job id
//     match makes redelivery harmless.
//  5. A PollResult with MessageCount zero means "keep waiting"; the command
//     itself never loops. The wait loop in the workflow package owns the
//     cadence and the retry budget.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// QueueReceiver is the subset of the SQS client the poller uses. Receive
// only: the poller observes the queue without acknowledging, so messages
// expire through their visibility timeout. The concrete *sqs.Client
// satisfies it; tests substitute fakes.
type QueueReceiver interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
}

// maxReceiveBatch is the SQS ceiling on messages per receive call.
const maxReceiveBatch = 10

// PollCompletionQueue is a command that performs exactly one receive against
// the completion queue and reports whether the awaited job has succeeded.
type PollCompletionQueue struct {
	cor.BaseCommand
	client          QueueReceiver // SQS client, or a fake in tests.
	queueURL        string        // The completion queue to poll.
	waitTimeSeconds int32         // Long-poll wait passed to each receive.
}

// NewPollCompletionQueue is the constructor for the PollCompletionQueue command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The SQS client to receive through.
//   - queueURL: The URL of the completion queue.
//   - waitTimeSeconds: Long-poll duration per receive; zero disables long polling.
//
// Outputs:
//   - *PollCompletionQueue: A pointer to the newly instantiated command.
func NewPollCompletionQueue(name string, client QueueReceiver, queueURL string, waitTimeSeconds int32) *PollCompletionQueue {
	return &PollCompletionQueue{
		BaseCommand:     *cor.NewBaseCommand(name),
		client:          client,
		queueURL:        queueURL,
		waitTimeSeconds: waitTimeSeconds,
	}
}

// Execute performs one poll attempt.
//
// Inputs:
//   - context: The shared `cor.Context`, holding the awaited job id as a
//     string in the input parameter.
func (c *PollCompletionQueue) Execute(context cor.Context) {
	jobID := context.Get(c.GetInputParam()).(string)

	out, err := c.client.ReceiveMessage(context.GetContext(), &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: maxReceiveBatch,
		WaitTimeSeconds:     c.waitTimeSeconds,
	})
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to receive from completion queue: %w", err))
		return
	}

	result := &model.PollResult{JobID: jobID}
	for _, raw := range out.Messages {
		if raw.Body == nil {
			continue
		}
		message, err := model.DecodeCompletionMessage(*raw.Body)
		if err != nil {
			// Foreign traffic on the queue is not the pipeline's problem.
			slog.WarnContext(context.GetContext(), "skipping malformed completion message",
				"command", c.GetName(),
				"error", err.Error())
			continue
		}
		if message.JobID != jobID || message.Status != model.StatusSucceeded {
			continue
		}
		result.MessageCount = 1
		result.Messages = append(result.Messages, *message)
		break
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), result)
}
