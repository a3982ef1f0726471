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
// command that converts the raw annotation payload into the normalized
// internal model. It is the boundary between "whatever the service sent"
// and the typed AnalysisResult every later step consumes.
//
// Logic Flow:
//  1. Receives the raw annotation JSON from the context.
//  2. Runs it through the normalizer, which tolerates both wrapped and
//     flat payload shapes and silently drops malformed entries.
//  3. Parks the AnalysisResult under the well-known analysis key (the
//     persistence command needs it after later steps have overwritten the
//     piped output) and forwards it as this command's output.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/normalize"
)

// AnnotationToStruct normalizes a raw annotation payload into a
// *model.AnalysisResult.
type AnnotationToStruct struct {
	cor.BaseCommand
}

// NewAnnotationToStruct is the constructor for the normalization command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *AnnotationToStruct: A pointer to the newly instantiated command.
func NewAnnotationToStruct(name string) *AnnotationToStruct {
	return &AnnotationToStruct{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute normalizes the payload.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *AnnotationToStruct) Execute(context cor.Context) {
	raw := context.Get(c.GetInputParam()).(json.RawMessage)

	result, err := normalize.Parse(raw)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to normalize annotation payload: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetAnalysisResultName(), result)
	context.Add(c.GetOutputParam(), result)
}
