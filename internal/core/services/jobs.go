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

// This file defines the JobRegistry, the API server's in-memory view of
// overlay runs. A run is created when a pipeline is kicked off, and its
// entry is updated exactly once when the pipeline terminates. State lives
// in process only: a restart forgets running jobs, and the artifacts in the
// output bucket remain the durable record.
package services

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediaops/aws-go-video-overlay/internal/core/model"
)

// Run statuses.
const (
	RunStatusRunning   = "RUNNING"
	RunStatusSucceeded = "SUCCEEDED"
	RunStatusFailed    = "FAILED"
)

// Run is one tracked pipeline execution.
type Run struct {
	ID        string                `json:"id"`               // Registry-assigned run id.
	Video     string                `json:"video"`            // Source video key.
	Kind      model.JobKind         `json:"kind"`             // Job family being run.
	Status    string                `json:"status"`           // RUNNING, SUCCEEDED, or FAILED.
	Result    *model.PipelineResult `json:"result,omitempty"` // Terminal artifacts when SUCCEEDED.
	Error     string                `json:"error,omitempty"`  // First recorded error when FAILED.
	StartedAt time.Time             `json:"started_at"`
	EndedAt   *time.Time            `json:"ended_at,omitempty"`
}

// JobRegistry tracks runs by id. All methods are safe for concurrent use.
type JobRegistry struct {
	mu   sync.RWMutex
	runs map[string]*Run
}

// NewJobRegistry constructs an empty registry.
func NewJobRegistry() *JobRegistry {
	return &JobRegistry{runs: make(map[string]*Run)}
}

// Create registers a new running job and returns its id.
func (r *JobRegistry) Create(video string, kind model.JobKind) *Run {
	run := &Run{
		ID:        uuid.NewString(),
		Video:     video,
		Kind:      kind,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run
	return run
}

// Complete marks a run as succeeded with its terminal result.
func (r *JobRegistry) Complete(id string, result *model.PipelineResult) {
	r.finish(id, RunStatusSucceeded, result, "")
}

// Fail marks a run as failed with the first recorded error message.
func (r *JobRegistry) Fail(id string, message string) {
	r.finish(id, RunStatusFailed, nil, message)
}

func (r *JobRegistry) finish(id, status string, result *model.PipelineResult, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return
	}
	now := time.Now().UTC()
	run.Status = status
	run.Result = result
	run.Error = message
	run.EndedAt = &now
}

// Get returns a copy of the run, or nil when the id is unknown. Returning a
// copy keeps callers from mutating registry state outside the lock.
func (r *JobRegistry) Get(id string) *Run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return nil
	}
	copied := *run
	return &copied
}

// List returns a copy of every tracked run, newest first.
func (r *JobRegistry) List() []*Run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Run, 0, len(r.runs))
	for _, run := range r.runs {
		copied := *run
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}
