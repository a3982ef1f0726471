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
// This file contains the normalized analysis model: the stable internal
// representation that every remote analysis payload (video annotation,
// speech transcription, text sentiment, entity extraction) is converted
// into before any recommendation or interpretation logic runs against it.
//
// The types here are plain values. They carry no behavior beyond small
// derived accessors (such as scene duration) so they can flow freely
// between workflow commands, services, and the API layer.
//
// Structs:
//   - Scene: A contiguous time interval in a media asset with a description.
//   - SentimentScore: The score/magnitude pair from text sentiment analysis.
//   - Entity: A named entity with its categorical type and salience.
//   - AnalysisResult: The aggregate of all normalized analysis output.
package model

// Scene represents a single detected segment of a media asset, typically
// derived from shot-boundary detection. Offsets are seconds from the start
// of the asset. A Scene produced by the normalizer always satisfies
// EndOffset > StartOffset; entries violating that invariant are dropped
// during normalization rather than surfaced.
type Scene struct {
	StartOffset float64 `json:"start_offset"` // Start of the scene in seconds.
	EndOffset   float64 `json:"end_offset"`   // End of the scene in seconds.
	Description string  `json:"description"`  // Free-text description of the scene, may be empty.
}

// Duration returns the length of the scene in seconds.
func (s *Scene) Duration() float64 {
	return s.EndOffset - s.StartOffset
}

// SentimentScore holds the result of a text sentiment analysis call.
// Score is in [-1, 1] where negative values indicate negative sentiment;
// Magnitude is non-negative and grows with the overall emotional weight
// of the document regardless of polarity.
type SentimentScore struct {
	Score     float64 `json:"score"`
	Magnitude float64 `json:"magnitude"`
}

// Entity is a named entity detected in analyzed text. Type is an open
// string set controlled by the remote service (e.g. "PERSON", "LOCATION");
// Salience is in [0, 1] and reflects the entity's importance to the text.
type Entity struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Salience float64 `json:"salience"`
}

// AnalysisResult is the normalized output of a full media analysis pass.
// It is the single input consumed by the recommendation engine and the
// command interpreter. All collection fields are always non-nil after
// normalization, and Transcript is always a string (possibly empty),
// never absent.
type AnalysisResult struct {
	Scenes        []*Scene  `json:"scenes"`
	Transcript    string    `json:"transcript"`
	QualityIssues []string  `json:"quality_issues"` // Free-text defect tags from the upstream analysis (e.g. "poor audio, scene change").
	Entities      []*Entity `json:"entities,omitempty"`
}

// NewAnalysisResult creates an empty, fully initialized AnalysisResult.
// Initializing the slices avoids nil checks in every downstream consumer.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Scenes:        make([]*Scene, 0),
		QualityIssues: make([]string, 0),
		Entities:      make([]*Entity, 0),
	}
}
