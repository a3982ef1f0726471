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
// command that asks a generative model for a prose editing brief: a short
// narrative that explains the analysis findings and the suggested edits to
// a human editor.
//
// Logic Flow:
//  1. Receives the suggestion list from the context and the parked
//     analysis result from its well-known key.
//  2. Renders the brief prompt template with the analysis and suggestions
//     serialized as JSON. A worked example from the model package is
//     included for few-shot guidance.
//  3. Sends the prompt to the rate-limited generative model through the
//     shared retry/telemetry helper.
//  4. Places the brief text into the context for persistence.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
)

// EditingBriefCreator generates a human-readable editing brief from the
// analysis and its suggestions.
type EditingBriefCreator struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	template                 *template.Template                 // The Go template for building the prompt.
	geminiInputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewEditingBriefCreator is the constructor for the brief command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generativeAIModel: The rate-limited wrapper for the generative model client.
//   - template: A parsed Go template for the brief prompt.
//
// Outputs:
//   - *EditingBriefCreator: A pointer to the newly instantiated command, including initialized telemetry counters.
func NewEditingBriefCreator(
	name string,
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel,
	template *template.Template) *EditingBriefCreator {

	out := &EditingBriefCreator{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
		template:          template}

	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.retry", out.GetName()))

	return out
}

// GenerateParams creates the map of dynamic data to be injected into the
// prompt template.
//
// Inputs:
//   - context: The shared `cor.Context` holding the analysis and suggestions.
//
// Outputs:
//   - map[string]interface{}: A map of keys and values for template substitution.
func (c *EditingBriefCreator) GenerateParams(context cor.Context) map[string]interface{} {
	params := make(map[string]interface{})

	analysisJSON, _ := json.Marshal(context.Get(GetAnalysisResultName()))
	params["ANALYSIS_JSON"] = string(analysisJSON)

	suggestionsJSON, _ := json.Marshal(context.Get(GetSuggestionsName()))
	params["SUGGESTIONS_JSON"] = string(suggestionsJSON)

	// Few-shot guidance keeps the brief's tone and length consistent.
	exampleSuggestions, _ := json.Marshal(model.GetExampleSuggestions())
	params["EXAMPLE_SUGGESTIONS_JSON"] = string(exampleSuggestions)
	return params
}

// IsExecutable requires both the analysis and the suggestions in context.
func (c *EditingBriefCreator) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(GetAnalysisResultName()) != nil &&
		context.Get(GetSuggestionsName()) != nil
}

// Execute renders the prompt and calls the generative model.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *EditingBriefCreator) Execute(context cor.Context) {
	var buffer bytes.Buffer
	if err := c.template.Execute(&buffer, c.GenerateParams(context)); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to execute brief prompt template: %w", err))
		return
	}

	out, err := cloud.GenerateMultiModalResponse(
		context.GetContext(),
		c.geminiInputTokenCounter,
		c.geminiOutputTokenCounter,
		c.geminiRetryCounter,
		0,
		c.generativeAIModel,
		cloud.NewTextPart(buffer.String()))
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("brief generation failed: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), out)
}
