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
// command that enriches a normalized analysis result with named entities
// extracted from its transcript.
//
// Logic Flow:
//  1. Receives the *model.AnalysisResult from the context.
//  2. If the transcript is empty there is nothing to extract; the result
//     passes through untouched.
//  3. Otherwise the transcript is sent to the language service. Entity
//     extraction is additive metadata, so a failure here is logged and
//     swallowed rather than aborting a pipeline that already holds a
//     usable analysis.
package commands

import (
	"log/slog"

	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
)

// EntityEnricher attaches named entities from the transcript to the
// analysis result.
type EntityEnricher struct {
	cor.BaseCommand
	client *cloud.AnalysisClient
}

// NewEntityEnricher is the constructor for the enrichment command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: The analysis client used to reach the language service.
//
// Outputs:
//   - *EntityEnricher: A pointer to the newly instantiated command.
func NewEntityEnricher(name string, client *cloud.AnalysisClient) *EntityEnricher {
	return &EntityEnricher{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

// Execute extracts entities from the transcript, best effort.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *EntityEnricher) Execute(context cor.Context) {
	result := context.Get(c.GetInputParam()).(*model.AnalysisResult)

	if result.Transcript != "" {
		entities, err := c.client.AnalyzeEntities(context.GetContext(), result.Transcript)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			slog.WarnContext(context.GetContext(), "entity extraction failed, continuing without entities", "error", err)
		} else {
			result.Entities = entities
		}
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), result)
}
