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

// Package cloud provides components for interacting with AWS services.
// This file implements a wrapper around the Rekognition client using the
// Decorator design pattern to add rate limiting without altering the client.
//
// Why this is important:
//   - Rate Limiting: the Rekognition Get* and Start* APIs carry low default
//     TPS quotas per account. Draining a large paginated result set without
//     a limiter trips throttling errors under load.
//
// The wrapper deliberately does NOT retry. Failed calls surface to the
// caller, and recovery belongs to the orchestrating wait loop.
//
// Structs:
//   - QuotaAwareRekognition: Wraps a Rekognition API client with a rate limiter.
//
// Functions:
//   - NewQuotaAwareRekognition: Constructor for the wrapped client.
package cloud

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"golang.org/x/time/rate"
)

// RekognitionAPI is the subset of the Rekognition client the pipeline uses.
// Commands depend on this interface rather than the concrete client so that
// tests can substitute fakes without an AWS account.
type RekognitionAPI interface {
	StartLabelDetection(ctx context.Context, params *rekognition.StartLabelDetectionInput, optFns ...func(*rekognition.Options)) (*rekognition.StartLabelDetectionOutput, error)
	StartPersonTracking(ctx context.Context, params *rekognition.StartPersonTrackingInput, optFns ...func(*rekognition.Options)) (*rekognition.StartPersonTrackingOutput, error)
	StartCelebrityRecognition(ctx context.Context, params *rekognition.StartCelebrityRecognitionInput, optFns ...func(*rekognition.Options)) (*rekognition.StartCelebrityRecognitionOutput, error)
	GetLabelDetection(ctx context.Context, params *rekognition.GetLabelDetectionInput, optFns ...func(*rekognition.Options)) (*rekognition.GetLabelDetectionOutput, error)
	GetPersonTracking(ctx context.Context, params *rekognition.GetPersonTrackingInput, optFns ...func(*rekognition.Options)) (*rekognition.GetPersonTrackingOutput, error)
	GetCelebrityRecognition(ctx context.Context, params *rekognition.GetCelebrityRecognitionInput, optFns ...func(*rekognition.Options)) (*rekognition.GetCelebrityRecognitionOutput, error)
}

// QuotaAwareRekognition is a decorator that enforces a requests-per-second
// budget across every Rekognition call made through it. All six wrapped
// methods share one token bucket, mirroring how the account-level quota is
// applied by the service.
type QuotaAwareRekognition struct {
	api     RekognitionAPI // The wrapped Rekognition client.
	limiter *rate.Limiter  // Shared token bucket; one token per API call.
}

// NewQuotaAwareRekognition constructs the wrapper.
//
// Inputs:
//   - api: The Rekognition client (or a fake in tests) to decorate.
//   - requestsPerSecond: The maximum number of API calls allowed per second.
//     Values below one fall back to a single call per second.
//
// Outputs:
//   - *QuotaAwareRekognition: A pointer to the newly created wrapper.
func NewQuotaAwareRekognition(api RekognitionAPI, requestsPerSecond int) *QuotaAwareRekognition {
	if requestsPerSecond < 1 {
		requestsPerSecond = 1
	}
	return &QuotaAwareRekognition{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(time.Second/time.Duration(requestsPerSecond)), requestsPerSecond),
	}
}

// StartLabelDetection submits a label detection job after acquiring a quota token.
func (q *QuotaAwareRekognition) StartLabelDetection(ctx context.Context, params *rekognition.StartLabelDetectionInput, optFns ...func(*rekognition.Options)) (*rekognition.StartLabelDetectionOutput, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return q.api.StartLabelDetection(ctx, params, optFns...)
}

// StartPersonTracking submits a person tracking job after acquiring a quota token.
func (q *QuotaAwareRekognition) StartPersonTracking(ctx context.Context, params *rekognition.StartPersonTrackingInput, optFns ...func(*rekognition.Options)) (*rekognition.StartPersonTrackingOutput, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return q.api.StartPersonTracking(ctx, params, optFns...)
}

// StartCelebrityRecognition submits a celebrity recognition job after acquiring a quota token.
func (q *QuotaAwareRekognition) StartCelebrityRecognition(ctx context.Context, params *rekognition.StartCelebrityRecognitionInput, optFns ...func(*rekognition.Options)) (*rekognition.StartCelebrityRecognitionOutput, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return q.api.StartCelebrityRecognition(ctx, params, optFns...)
}

// GetLabelDetection fetches one page of label detection results after acquiring a quota token.
func (q *QuotaAwareRekognition) GetLabelDetection(ctx context.Context, params *rekognition.GetLabelDetectionInput, optFns ...func(*rekognition.Options)) (*rekognition.GetLabelDetectionOutput, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return q.api.GetLabelDetection(ctx, params, optFns...)
}

// GetPersonTracking fetches one page of person tracking results after acquiring a quota token.
func (q *QuotaAwareRekognition) GetPersonTracking(ctx context.Context, params *rekognition.GetPersonTrackingInput, optFns ...func(*rekognition.Options)) (*rekognition.GetPersonTrackingOutput, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return q.api.GetPersonTracking(ctx, params, optFns...)
}

// GetCelebrityRecognition fetches one page of celebrity recognition results after acquiring a quota token.
func (q *QuotaAwareRekognition) GetCelebrityRecognition(ctx context.Context, params *rekognition.GetCelebrityRecognitionInput, optFns ...func(*rekognition.Options)) (*rekognition.GetCelebrityRecognitionOutput, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return q.api.GetCelebrityRecognition(ctx, params, optFns...)
}
