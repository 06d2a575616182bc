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
// This file is central to the application's architecture: it initializes and
// holds all the client objects needed to communicate with S3, SQS, and
// Rekognition. It acts as a dependency injection container, creating a
// single, shared `ServiceClients` struct that is passed throughout the
// application instead of clients being constructed from ambient process
// state inside each component.
//
// Logic Flow:
//  1. `NewCloudServiceClients` is called at application startup with the
//     loaded configuration.
//  2. One aws.Config is resolved for the configured region.
//  3. S3 (plus its presigner), SQS, and Rekognition clients are built from it.
//  4. Each configured Rekognition job family gets a rate-limited wrapper.
//
// Structs:
//   - ServiceClients: A container holding all initialized AWS service clients.
//
// Functions:
//   - NewCloudServiceClients: Factory that creates and configures all clients.
package cloud

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// ServiceClients is a struct that acts as a central container for all the
// clients that interact with AWS services. This pattern is a form of
// dependency injection, making it easy to share client connections across
// the application and to substitute fakes in tests.
type ServiceClients struct {
	S3Client          *s3.Client                        // Client for Amazon S3.
	PresignClient     *s3.PresignClient                 // Presigner derived from the S3 client, used for playback URLs.
	SQSClient         *sqs.Client                       // Client for Amazon SQS.
	RekognitionClient *rekognition.Client               // The raw Rekognition client.
	Rekognition       map[string]*QuotaAwareRekognition // Rate-limited Rekognition wrappers keyed by job family.
}

// NewCloudServiceClients is a factory function that initializes all required
// AWS service clients based on the provided configuration. It serves as the
// main entry point for setting up the application's external dependencies.
//
// Inputs:
//   - ctx: The root context.Context for the application.
//   - cfg: A pointer to the loaded application configuration.
//
// Outputs:
//   - *ServiceClients: A pointer to the fully initialized ServiceClients struct.
//   - error: An error if the shared AWS configuration cannot be resolved.
func NewCloudServiceClients(ctx context.Context, cfg *Config) (clients *ServiceClients, err error) {
	// Resolve one shared aws.Config (credentials chain, region, retryer)
	// for every service client.
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Application.Region))
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg)
	rekClient := rekognition.NewFromConfig(awsCfg)

	// Wrap the Rekognition client once per configured job family, each with
	// its own request budget.
	wrappers := make(map[string]*QuotaAwareRekognition)
	for kind, job := range cfg.Jobs {
		wrappers[kind] = NewQuotaAwareRekognition(rekClient, job.RateLimit)
	}

	clients = &ServiceClients{
		S3Client:          s3Client,
		PresignClient:     s3.NewPresignClient(s3Client),
		SQSClient:         sqs.NewFromConfig(awsCfg),
		RekognitionClient: rekClient,
		Rekognition:       wrappers,
	}
	return clients, nil
}
