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

// This file defines the command that drains every result page for a
// finished Rekognition job into one flattened result set.
//
// Logic Flow:
//  1. The command receives the PollResult of the successful wait from the
//     context and takes the job id from it.
//  2. It fetches pages through a ResultFetcher, following NextToken until
//     the service stops returning one. Records accumulate in order; page
//     boundaries are invisible to everything downstream.
//  3. The source object reference and the video metadata are captured from
//     the FIRST page that carries each. Later pages repeat them and are
//     ignored, so a mid-drain metadata hiccup cannot clobber good values.
//  4. A page whose primary collection is absent stops the drain early with
//     whatever accumulated. The service does not do this in practice; the
//     guard keeps a malformed response from looping forever on a stale
//     token.
package commands

import (
	"fmt"

	"github.com/mediaops/aws-go-video-overlay/internal/core/cor"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// FetchDetectionResults is a command that pages through a completed job's
// results and outputs the flattened DetectionResults.
type FetchDetectionResults struct {
	cor.BaseCommand
	kind    model.JobKind // Job family being drained.
	fetcher ResultFetcher // Page source, rate limited in production.
}

// NewFetchDetectionResults is the constructor for the FetchDetectionResults command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - kind: The job family whose results are being fetched.
//   - fetcher: The page source for that family.
//
// Outputs:
//   - *FetchDetectionResults: A pointer to the newly instantiated command.
func NewFetchDetectionResults(name string, kind model.JobKind, fetcher ResultFetcher) *FetchDetectionResults {
	return &FetchDetectionResults{
		BaseCommand: *cor.NewBaseCommand(name),
		kind:        kind,
		fetcher:     fetcher,
	}
}

// Execute drains all result pages for the job reported by the wait loop.
//
// Inputs:
//   - context: The shared `cor.Context`, holding the successful
//     `*model.PollResult` in the input parameter.
func (c *FetchDetectionResults) Execute(context cor.Context) {
	poll := context.Get(c.GetInputParam()).(*model.PollResult)
	if !poll.Done() {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("no completed job to fetch results for"))
		return
	}

	results := &model.DetectionResults{Kind: c.kind}
	var nextToken *string
	for {
		page, err := c.fetcher.FetchPage(context.GetContext(), poll.JobID, nextToken)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("failed to fetch results for job %s: %w", poll.JobID, err))
			return
		}

		// A defensive-stop page contributes nothing, not even its
		// page-level metadata.
		if page.Empty {
			break
		}

		results.Labels = append(results.Labels, page.Labels...)
		results.Persons = append(results.Persons, page.Persons...)
		results.Celebrities = append(results.Celebrities, page.Celebrities...)
		// First writer wins for the page-level metadata.
		if results.SourceObject == nil {
			results.SourceObject = page.SourceObject
		}
		if results.Metadata == nil {
			results.Metadata = page.Metadata
		}

		if page.NextToken == nil {
			break
		}
		nextToken = page.NextToken
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), results)
}
