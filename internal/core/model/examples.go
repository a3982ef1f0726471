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

// Package model defines the core data structures for the application.
// This file provides example instances of the analysis model. They serve two
// purposes: few-shot JSON examples embedded into generative prompts, and
// ready-made fixtures for unit tests that need a populated AnalysisResult
// without running a real analysis pass.
package model

// GetExampleAnalysisResult returns a small, fully populated AnalysisResult
// covering every field the normalizer can produce.
func GetExampleAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Scenes: []*Scene{
			{StartOffset: 0.0, EndOffset: 4.2, Description: "Opening pan across an exterior mountain landscape"},
			{StartOffset: 4.2, EndOffset: 5.1, Description: "Quick cut to the presenter, poor audio in the background"},
			{StartOffset: 5.1, EndOffset: 12.8, Description: "Product close-up on a white table"},
		},
		Transcript:    "Welcome back everyone. Today we are taking a closer look at the new build.",
		QualityIssues: []string{"scene change detected near 4s", "low audio level in segment two"},
		Entities: []*Entity{
			{Name: "presenter", Type: "PERSON", Salience: 0.62},
		},
	}
}

// GetExampleSuggestions returns a representative suggestion list in rule
// evaluation order, useful as a prompt example for the editing-brief
// generator.
func GetExampleSuggestions() []EditSuggestion {
	return []EditSuggestion{
		NewSpeedSuggestion(0.85, "Slow down playback to smooth an abrupt scene change.", 0.8),
		NewTrimSuggestion(4.2, 5.1, "Trim the segment flagged for audio problems.", 0.9),
		NewFilterSuggestion(FilterContrast, 0.1, "Boost contrast for the exterior landscape scene.", 0.8),
	}
}
