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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// command that submits the media bytes to the video intelligence service.
//
// Logic Flow:
//  1. Receives the raw media bytes from the context.
//  2. Calls the analysis client's AnnotateVideo, which handles auth,
//     rate limiting, and — when the service answers with an operation
//     name instead of a result — polling the operation to completion.
//  3. Places the raw annotation payload (JSON) into the context for the
//     normalization command to parse.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
)

// VideoAnnotate runs the remote video annotation pass over in-memory media.
type VideoAnnotate struct {
	cor.BaseCommand
	client *cloud.AnalysisClient
}

// NewVideoAnnotate is the constructor for the annotation command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The analysis client used to reach the video intelligence service.
//
// Outputs:
//   - *VideoAnnotate: A pointer to the newly instantiated command.
func NewVideoAnnotate(name string, client *cloud.AnalysisClient) *VideoAnnotate {
	return &VideoAnnotate{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

// Execute submits the media for annotation and captures the raw payload.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *VideoAnnotate) Execute(context cor.Context) {
	data := context.Get(c.GetInputParam()).([]byte)

	raw, err := c.client.AnnotateVideo(context.GetContext(), data)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("video annotation failed: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), raw)
}
