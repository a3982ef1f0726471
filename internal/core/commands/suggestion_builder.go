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
// command that runs the rule-based recommendation engine over a normalized
// analysis result.
//
// Logic Flow:
//  1. Receives the *model.AnalysisResult from the context.
//  2. Runs the recommendation engine, which evaluates its rules in a
//     fixed order and always yields at least one suggestion.
//  3. Parks the suggestion list under the well-known suggestions key for
//     the persistence step and forwards it as this command's output.
package commands

import (
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/suggest"
)

// SuggestionBuilder produces edit suggestions from an analysis result.
type SuggestionBuilder struct {
	cor.BaseCommand
	engine *suggest.Engine
}

// NewSuggestionBuilder is the constructor for the suggestion command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - engine: The configured recommendation engine.
//
// Outputs:
//   - *SuggestionBuilder: A pointer to the newly instantiated command.
func NewSuggestionBuilder(name string, engine *suggest.Engine) *SuggestionBuilder {
	return &SuggestionBuilder{BaseCommand: *cor.NewBaseCommand(name), engine: engine}
}

// IsExecutable requires a normalized analysis result in the context.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
//
// Outputs:
//   - bool: True if the analysis result exists in the context.
func (c *SuggestionBuilder) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(c.GetInputParam()) != nil
}

// Execute runs the recommendation rules.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *SuggestionBuilder) Execute(context cor.Context) {
	analysis := context.Get(c.GetInputParam()).(*model.AnalysisResult)

	suggestions := c.engine.Recommend(context.GetContext(), analysis)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetSuggestionsName(), suggestions)
	context.Add(c.GetOutputParam(), suggestions)
}
