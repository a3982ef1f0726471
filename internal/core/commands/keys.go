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
// Responsibility (COR) pattern's Command interface for the media
// intelligence pipeline. This file defines the well-known context keys
// that commands use to share state beyond the simple input/output piping:
// values that more than one downstream command needs (the source object,
// the normalized analysis, the suggestion list) are parked under these
// keys so they survive the chain's output-to-input flip between steps.
package commands

// Well-known context keys. Exposed as functions to match the accessor
// convention used elsewhere (see cloud.GetGCSObjectName).
const (
	analysisResultKey = "__ANALYSIS__RESULT__"
	suggestionsKey    = "__EDIT__SUGGESTIONS__"
	mediaUriKey       = "__MEDIA__URI__"
)

// GetAnalysisResultName returns the context key holding the normalized
// *model.AnalysisResult for the current run.
func GetAnalysisResultName() string { return analysisResultKey }

// GetSuggestionsName returns the context key holding the []model.EditSuggestion
// produced by the recommendation step.
func GetSuggestionsName() string { return suggestionsKey }

// GetMediaUriName returns the context key holding the gs:// URI of the media
// asset being processed.
func GetMediaUriName() string { return mediaUriKey }
