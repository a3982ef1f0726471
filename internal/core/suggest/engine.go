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

// Package suggest implements the recommendation engine: a fixed, ordered
// rule set that turns a normalized analysis result into edit suggestions.
//
// Logic Flow:
//  1. Quality issues mentioning scene changes produce speed adjustments.
//  2. Quality issues mentioning audio produce a trim of the first scene
//     whose description flags poor or low audio.
//  3. A non-empty transcript is scored for sentiment; strongly positive
//     text brightens, strongly negative text raises contrast. A failed
//     sentiment call is logged and swallowed so later rules still run.
//  4. Scene descriptions and durations add per-scene filter and speed
//     suggestions.
//  5. When nothing fired, a single fallback saturation filter guarantees a
//     non-empty result for any successful analysis.
//
// The output order is rule evaluation order. Confidence values are
// informational for callers; the engine never re-sorts by them.
package suggest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
)

// Rule confidence and parameter constants, one block per rule.
const (
	sceneChangeRateMultiple  = 0.75 // Rate when the issue text lists several changes.
	sceneChangeRateSingle    = 0.85 // Rate for a single noted change.
	sceneChangeConfidence    = 0.8
	audioTrimConfidence      = 0.9
	sentimentPositiveCutoff  = 0.8
	sentimentNegativeCutoff  = 0.2
	sentimentConfidence      = 0.75
	outdoorSceneConfidence   = 0.8 // Confidence for description-driven contrast boosts.
	shortSceneDuration       = 2.0
	shortSceneRate           = 0.8
	shortSceneConfidence     = 0.7
	fallbackConfidence       = 0.6
	filterAmountStep         = 0.1
)

// SentimentAnalyzer is the narrow slice of the analysis client the engine
// needs. Tests substitute a canned implementation.
type SentimentAnalyzer interface {
	AnalyzeSentiment(ctx context.Context, text string) (model.SentimentScore, error)
}

// Engine evaluates the rule set. A nil Sentiment disables rule 3 the same
// way a failed call does.
type Engine struct {
	Sentiment SentimentAnalyzer
	Logger    *slog.Logger
}

// NewEngine constructs an engine around a sentiment analyzer.
func NewEngine(sentiment SentimentAnalyzer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Sentiment: sentiment, Logger: logger}
}

// rule pairs a stable name with the builder that evaluates it, so each rule
// can be exercised on its own.
type rule struct {
	name  string
	build func(ctx context.Context, analysis *model.AnalysisResult) []model.EditSuggestion
}

// rules returns the rule table. Table order is evaluation order, and
// therefore the order of the returned suggestions.
func (e *Engine) rules() []rule {
	return []rule{
		{name: "scene-change-speed", build: e.sceneChangeRule},
		{name: "audio-issue-trim", build: e.audioRule},
		{name: "sentiment-filter", build: e.sentimentRule},
		{name: "scene-filters", build: e.sceneRule},
	}
}

// Recommend applies the rules in order and returns the accumulated
// suggestions.
//
// Inputs:
//   - ctx: Carries cancellation into the sentiment call.
//   - analysis: The normalized analysis result to evaluate.
//
// Outputs:
//   - []model.EditSuggestion: Suggestions in rule evaluation order; never
//     empty, because the fallback rule fires when nothing else did.
func (e *Engine) Recommend(ctx context.Context, analysis *model.AnalysisResult) []model.EditSuggestion {
	suggestions := make([]model.EditSuggestion, 0)

	for _, r := range e.rules() {
		suggestions = append(suggestions, r.build(ctx, analysis)...)
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, model.NewFilterSuggestion(
			model.FilterSaturation,
			filterAmountStep,
			"Apply a light saturation boost as a general polish.",
			fallbackConfidence,
		))
	}
	return suggestions
}

// sceneChangeRule emits one speed adjustment per quality issue that mentions
// a scene change. A comma in the issue text is read as "multiple changes
// noted" and selects the stronger slow-down.
func (e *Engine) sceneChangeRule(_ context.Context, analysis *model.AnalysisResult) []model.EditSuggestion {
	out := make([]model.EditSuggestion, 0)
	for _, issue := range analysis.QualityIssues {
		lowered := strings.ToLower(issue)
		if !strings.Contains(lowered, "scene change") {
			continue
		}
		rate := sceneChangeRateSingle
		if strings.Contains(issue, ",") {
			rate = sceneChangeRateMultiple
		}
		out = append(out, model.NewSpeedSuggestion(
			rate,
			"Slow down playback to smooth abrupt scene changes.",
			sceneChangeConfidence,
		))
	}
	return out
}

// audioRule emits a trim spanning the first scene whose description flags
// poor or low audio, once per audio-related quality issue. No matching
// scene means no suggestion.
func (e *Engine) audioRule(_ context.Context, analysis *model.AnalysisResult) []model.EditSuggestion {
	out := make([]model.EditSuggestion, 0)
	for _, issue := range analysis.QualityIssues {
		if !strings.Contains(strings.ToLower(issue), "audio") {
			continue
		}
		for _, scene := range analysis.Scenes {
			description := strings.ToLower(scene.Description)
			if strings.Contains(description, "poor audio") || strings.Contains(description, "low audio") {
				out = append(out, model.NewTrimSuggestion(
					scene.StartOffset,
					scene.EndOffset,
					"Trim the segment flagged for audio problems.",
					audioTrimConfidence,
				))
				break
			}
		}
	}
	return out
}

// sentimentRule scores a non-empty transcript and maps strong sentiment to
// a filter. Failures are logged and swallowed so the remaining rules run.
func (e *Engine) sentimentRule(ctx context.Context, analysis *model.AnalysisResult) []model.EditSuggestion {
	out := make([]model.EditSuggestion, 0)
	if analysis.Transcript == "" || e.Sentiment == nil {
		return out
	}

	score, err := e.Sentiment.AnalyzeSentiment(ctx, analysis.Transcript)
	if err != nil {
		e.Logger.Warn("sentiment analysis failed; skipping sentiment rule", "error", err)
		return out
	}

	switch {
	case score.Score >= sentimentPositiveCutoff:
		out = append(out, model.NewFilterSuggestion(
			model.FilterBrightness,
			filterAmountStep,
			"Brighten the footage to match the upbeat narration.",
			sentimentConfidence,
		))
	case score.Score <= sentimentNegativeCutoff:
		out = append(out, model.NewFilterSuggestion(
			model.FilterContrast,
			filterAmountStep,
			"Raise contrast to suit the serious tone of the narration.",
			sentimentConfidence,
		))
	}
	return out
}

// sceneRule walks every scene: outdoor descriptions get a contrast boost,
// very short scenes get a slow-down. Both can fire for the same scene.
func (e *Engine) sceneRule(_ context.Context, analysis *model.AnalysisResult) []model.EditSuggestion {
	out := make([]model.EditSuggestion, 0)
	for _, scene := range analysis.Scenes {
		description := strings.ToLower(scene.Description)
		if strings.Contains(description, "exterior") || strings.Contains(description, "landscape") {
			out = append(out, model.NewFilterSuggestion(
				model.FilterContrast,
				filterAmountStep,
				"Boost contrast for the outdoor scene.",
				outdoorSceneConfidence,
			))
		}
		if scene.Duration() < shortSceneDuration {
			out = append(out, model.NewSpeedSuggestion(
				shortSceneRate,
				"Slow down a very short scene so it reads clearly.",
				shortSceneConfidence,
			))
		}
	}
	return out
}
