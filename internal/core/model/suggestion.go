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
// This file defines the edit-suggestion model produced by the recommendation
// engine. A suggestion is a tagged variant: the Kind field selects exactly
// one of the kind-specific parameter structs, and the constructors below are
// the only intended way to build one. Keeping the payloads as separate typed
// structs (instead of a generic parameter map) lets consumers switch on Kind
// and have the compiler catch unhandled cases.
package model

// SuggestionKind enumerates the supported edit-suggestion variants.
type SuggestionKind string

const (
	SuggestionTrim       SuggestionKind = "trim"
	SuggestionFilter     SuggestionKind = "filter"
	SuggestionTitleSlide SuggestionKind = "add_title_slide"
	SuggestionSpeed      SuggestionKind = "speed_adjustment"
	SuggestionTransition SuggestionKind = "transition"
)

// FilterKind enumerates the visual filters a filter suggestion can request.
type FilterKind string

const (
	FilterBrightness FilterKind = "brightness"
	FilterContrast   FilterKind = "contrast"
	FilterSaturation FilterKind = "saturation"
)

// TrimParams asks the editor to cut the span [StartOffset, EndOffset) out
// of the media asset. Offsets are seconds.
type TrimParams struct {
	StartOffset float64 `json:"start_offset"`
	EndOffset   float64 `json:"end_offset"`
}

// FilterParams asks the editor to apply a visual filter adjustment.
// Amount is a relative delta (e.g. +0.1 brightness), not an absolute value.
type FilterParams struct {
	Kind   FilterKind `json:"kind"`
	Amount float64    `json:"amount"`
}

// SpeedParams asks the editor to change playback rate. Rate is a multiplier
// where 1.0 is unchanged and values below 1.0 slow the media down.
type SpeedParams struct {
	Rate float64 `json:"rate"`
}

// TitleSlideParams asks the editor to insert a title card at the given offset.
type TitleSlideParams struct {
	Text     string  `json:"text"`
	AtOffset float64 `json:"at_offset"`
}

// TransitionParams asks the editor to insert a transition between two scenes.
type TransitionParams struct {
	Style    string  `json:"style"`
	AtOffset float64 `json:"at_offset"`
}

// EditSuggestion is one ranked, explainable edit recommendation. Exactly one
// of the parameter pointers is non-nil, matching Kind. Confidence is a
// heuristic display score in [0, 1]; the suggestion list order is the rule
// evaluation order, not a confidence sort.
type EditSuggestion struct {
	Kind       SuggestionKind    `json:"kind"`
	Trim       *TrimParams       `json:"trim,omitempty"`
	Filter     *FilterParams     `json:"filter,omitempty"`
	Speed      *SpeedParams      `json:"speed,omitempty"`
	TitleSlide *TitleSlideParams `json:"title_slide,omitempty"`
	Transition *TransitionParams `json:"transition,omitempty"`
	Text       string            `json:"text"`       // Human-readable explanation of the suggestion.
	Confidence float64           `json:"confidence"` // Heuristic score in [0, 1], informational only.
}

// NewTrimSuggestion builds a trim suggestion covering the given span.
func NewTrimSuggestion(start float64, end float64, text string, confidence float64) EditSuggestion {
	return EditSuggestion{
		Kind:       SuggestionTrim,
		Trim:       &TrimParams{StartOffset: start, EndOffset: end},
		Text:       text,
		Confidence: confidence,
	}
}

// NewFilterSuggestion builds a filter suggestion for the given adjustment.
func NewFilterSuggestion(kind FilterKind, amount float64, text string, confidence float64) EditSuggestion {
	return EditSuggestion{
		Kind:       SuggestionFilter,
		Filter:     &FilterParams{Kind: kind, Amount: amount},
		Text:       text,
		Confidence: confidence,
	}
}

// NewSpeedSuggestion builds a playback-rate suggestion.
func NewSpeedSuggestion(rate float64, text string, confidence float64) EditSuggestion {
	return EditSuggestion{
		Kind:       SuggestionSpeed,
		Speed:      &SpeedParams{Rate: rate},
		Text:       text,
		Confidence: confidence,
	}
}

// NewTitleSlideSuggestion builds a title-card suggestion.
func NewTitleSlideSuggestion(text string, atOffset float64, explanation string, confidence float64) EditSuggestion {
	return EditSuggestion{
		Kind:       SuggestionTitleSlide,
		TitleSlide: &TitleSlideParams{Text: text, AtOffset: atOffset},
		Text:       explanation,
		Confidence: confidence,
	}
}

// NewTransitionSuggestion builds a transition suggestion.
func NewTransitionSuggestion(style string, atOffset float64, explanation string, confidence float64) EditSuggestion {
	return EditSuggestion{
		Kind:       SuggestionTransition,
		Transition: &TransitionParams{Style: style, AtOffset: atOffset},
		Text:       explanation,
		Confidence: confidence,
	}
}
