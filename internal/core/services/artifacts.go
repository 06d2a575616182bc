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

// Package services contains the business logic for interacting with data
// sources. This file defines the ArtifactService, which lists the compiled
// subtitle artifacts in the output bucket and generates secure,
// time-limited URLs for accessing them.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Artifact kinds, derived from the object key suffix.
const (
	ArtifactKindTrack  = "track"
	ArtifactKindViewer = "viewer"
)

// Artifact describes one compiled artifact in the output bucket.
type Artifact struct {
	Key          string    `json:"key"`           // Object key in the output bucket.
	Kind         string    `json:"kind"`          // "track" for .vtt, "viewer" for .html.
	Size         int64     `json:"size"`          // Object size in bytes.
	LastModified time.Time `json:"last_modified"` // Upload time of the current version.
}

// BucketLister is the subset of the S3 client used for listing. The
// concrete *s3.Client satisfies it.
type BucketLister interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Presigner is the subset of the S3 presign client used for signing GET
// URLs. The concrete *s3.PresignClient satisfies it.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ArtifactService is a struct that encapsulates the clients and
// configuration needed to expose published artifacts to API callers. It
// abstracts the details of listing and presigning against S3.
type ArtifactService struct {
	Lister    BucketLister // Client for listing the output bucket.
	Presigner Presigner    // Client for generating presigned GET URLs.
	Bucket    string       // The output bucket holding the artifacts.
}

// List returns every subtitle artifact in the output bucket, in key order
// as S3 reports them. Only .vtt and .html objects qualify; detection dumps
// and HLS segments in the same bucket are filtered out.
//
// Inputs:
//   - ctx: The context for the request, used for cancellation and tracing.
//
// Outputs:
//   - []Artifact: The qualifying objects.
//   - error: An error if any list call fails.
func (s *ArtifactService) List(ctx context.Context) ([]Artifact, error) {
	var artifacts []Artifact
	var continuation *string
	for {
		out, err := s.Lister.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.Bucket,
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.Bucket, err)
		}
		for _, object := range out.Contents {
			if object.Key == nil {
				continue
			}
			kind, ok := artifactKind(*object.Key)
			if !ok {
				continue
			}
			artifact := Artifact{Key: *object.Key, Kind: kind}
			if object.Size != nil {
				artifact.Size = *object.Size
			}
			if object.LastModified != nil {
				artifact.LastModified = *object.LastModified
			}
			artifacts = append(artifacts, artifact)
		}
		if out.NextContinuationToken == nil {
			return artifacts, nil
		}
		continuation = out.NextContinuationToken
	}
}

// GenerateSignedURL creates a time-limited URL for one artifact, letting a
// browser fetch the track or viewer page directly from S3 without
// credentials.
//
// Inputs:
//   - ctx: The context for the request.
//   - key: The artifact's object key.
//   - expires: The duration for which the URL will be valid.
//
// Outputs:
//   - string: The generated presigned URL.
//   - error: An error if signing fails.
func (s *ArtifactService) GenerateSignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	request, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign s3://%s/%s: %w", s.Bucket, key, err)
	}
	return request.URL, nil
}

// artifactKind classifies an object key by suffix.
func artifactKind(key string) (string, bool) {
	switch {
	case strings.HasSuffix(key, ".vtt"):
		return ArtifactKindTrack, true
	case strings.HasSuffix(key, ".html"):
		return ArtifactKindViewer, true
	default:
		return "", false
	}
}
