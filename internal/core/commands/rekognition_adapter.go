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

// This file adapts the three Rekognition Get* APIs to one page-oriented
// interface so the result fetcher can drain any job family with a single
// pagination loop. Each adapter converts the SDK's wire types into the
// internal model types, widening float32 coordinates to float64 so the
// stored detection dumps round-trip through encoding/json without a second
// set of struct tags.
package commands

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rekognitiontypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/mediaops/aws-go-video-overlay/internal/cloud"
	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// ResultFetcher retrieves one page of results for a finished job. NextToken
// is nil for the first page; implementations pass it through to the service.
type ResultFetcher interface {
	FetchPage(ctx context.Context, jobID string, nextToken *string) (*model.DetectionPage, error)
}

// resultPageSize is the per-call MaxResults passed to every Get* API.
const resultPageSize = 1000

// NewResultFetcher returns the fetcher for a job family, backed by the
// given rate-limited client.
func NewResultFetcher(kind model.JobKind, client cloud.RekognitionAPI) ResultFetcher {
	switch kind {
	case model.JobKindPerson:
		return &personFetcher{client: client}
	case model.JobKindCelebrity:
		return &celebrityFetcher{client: client}
	default:
		return &labelFetcher{client: client}
	}
}

type labelFetcher struct {
	client cloud.RekognitionAPI
}

func (f *labelFetcher) FetchPage(ctx context.Context, jobID string, nextToken *string) (*model.DetectionPage, error) {
	out, err := f.client.GetLabelDetection(ctx, &rekognition.GetLabelDetectionInput{
		JobId:      &jobID,
		MaxResults: int32Ptr(resultPageSize),
		NextToken:  nextToken,
	})
	if err != nil {
		return nil, err
	}
	page := &model.DetectionPage{
		NextToken:    out.NextToken,
		SourceObject: convertSourceObject(out.Video),
		Metadata:     convertVideoMetadata(out.VideoMetadata),
		Empty:        out.Labels == nil,
	}
	for _, record := range out.Labels {
		page.Labels = append(page.Labels, convertLabelDetection(record))
	}
	return page, nil
}

type personFetcher struct {
	client cloud.RekognitionAPI
}

func (f *personFetcher) FetchPage(ctx context.Context, jobID string, nextToken *string) (*model.DetectionPage, error) {
	out, err := f.client.GetPersonTracking(ctx, &rekognition.GetPersonTrackingInput{
		JobId:      &jobID,
		MaxResults: int32Ptr(resultPageSize),
		NextToken:  nextToken,
	})
	if err != nil {
		return nil, err
	}
	page := &model.DetectionPage{
		NextToken:    out.NextToken,
		SourceObject: convertSourceObject(out.Video),
		Metadata:     convertVideoMetadata(out.VideoMetadata),
		Empty:        out.Persons == nil,
	}
	for _, record := range out.Persons {
		page.Persons = append(page.Persons, convertPersonDetection(record))
	}
	return page, nil
}

type celebrityFetcher struct {
	client cloud.RekognitionAPI
}

func (f *celebrityFetcher) FetchPage(ctx context.Context, jobID string, nextToken *string) (*model.DetectionPage, error) {
	out, err := f.client.GetCelebrityRecognition(ctx, &rekognition.GetCelebrityRecognitionInput{
		JobId:      &jobID,
		MaxResults: int32Ptr(resultPageSize),
		NextToken:  nextToken,
	})
	if err != nil {
		return nil, err
	}
	page := &model.DetectionPage{
		NextToken:    out.NextToken,
		SourceObject: convertSourceObject(out.Video),
		Metadata:     convertVideoMetadata(out.VideoMetadata),
		Empty:        out.Celebrities == nil,
	}
	for _, record := range out.Celebrities {
		page.Celebrities = append(page.Celebrities, convertCelebrityRecognition(record))
	}
	return page, nil
}

func int32Ptr(v int32) *int32 { return &v }

func widenFloat(v *float32) *float64 {
	if v == nil {
		return nil
	}
	w := float64(*v)
	return &w
}

func convertBoundingBox(box *rekognitiontypes.BoundingBox) *model.BoundingBox {
	if box == nil {
		return nil
	}
	return &model.BoundingBox{
		Left:   widenFloat(box.Left),
		Top:    widenFloat(box.Top),
		Width:  widenFloat(box.Width),
		Height: widenFloat(box.Height),
	}
}

func convertFace(face *rekognitiontypes.FaceDetail) *model.FaceDetail {
	if face == nil {
		return nil
	}
	return &model.FaceDetail{
		BoundingBox: convertBoundingBox(face.BoundingBox),
		Confidence:  widenFloat(face.Confidence),
	}
}

func convertLabelDetection(record rekognitiontypes.LabelDetection) model.LabelDetection {
	out := model.LabelDetection{
		Timestamp:            record.Timestamp,
		DurationMillis:       record.DurationMillis,
		StartTimestampMillis: record.StartTimestampMillis,
		EndTimestampMillis:   record.EndTimestampMillis,
	}
	if record.Label == nil {
		return out
	}
	label := &model.Label{
		Name:       record.Label.Name,
		Confidence: widenFloat(record.Label.Confidence),
	}
	for _, instance := range record.Label.Instances {
		label.Instances = append(label.Instances, model.LabelInstance{
			BoundingBox: convertBoundingBox(instance.BoundingBox),
			Confidence:  widenFloat(instance.Confidence),
		})
	}
	for _, parent := range record.Label.Parents {
		label.Parents = append(label.Parents, model.Parent{Name: parent.Name})
	}
	out.Label = label
	return out
}

func convertPersonDetection(record rekognitiontypes.PersonDetection) model.PersonDetection {
	out := model.PersonDetection{Timestamp: record.Timestamp}
	if record.Person == nil {
		return out
	}
	out.Person = &model.PersonDetail{
		Index:       record.Person.Index,
		BoundingBox: convertBoundingBox(record.Person.BoundingBox),
		Face:        convertFace(record.Person.Face),
	}
	return out
}

func convertCelebrityRecognition(record rekognitiontypes.CelebrityRecognition) model.CelebrityRecognition {
	out := model.CelebrityRecognition{Timestamp: record.Timestamp}
	if record.Celebrity == nil {
		return out
	}
	out.Celebrity = &model.CelebrityDetail{
		Id:         record.Celebrity.Id,
		Name:       record.Celebrity.Name,
		Confidence: widenFloat(record.Celebrity.Confidence),
		Face:       convertFace(record.Celebrity.Face),
	}
	return out
}

func convertSourceObject(video *rekognitiontypes.Video) *model.RekognitionS3Object {
	if video == nil || video.S3Object == nil {
		return nil
	}
	return &model.RekognitionS3Object{
		Bucket: video.S3Object.Bucket,
		Name:   video.S3Object.Name,
	}
}

func convertVideoMetadata(metadata *rekognitiontypes.VideoMetadata) *model.VideoMetadata {
	if metadata == nil {
		return nil
	}
	out := &model.VideoMetadata{
		Codec:       metadata.Codec,
		Format:      metadata.Format,
		FrameRate:   widenFloat(metadata.FrameRate),
		FrameHeight: metadata.FrameHeight,
		FrameWidth:  metadata.FrameWidth,
	}
	if metadata.DurationMillis != nil {
		out.DurationMillis = *metadata.DurationMillis
	}
	return out
}
