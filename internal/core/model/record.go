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
// This file defines the persistence record written to BigQuery after a full
// analysis pass. Scenes and suggestions are stored as JSON strings rather
// than repeated records so the table schema stays flat and the row can be
// reconstructed without a schema migration every time the suggestion model
// grows a new variant.
package model

import (
	"encoding/json"
	"time"
)

// MediaIntelRecord is one completed analysis run, flattened for streaming
// insert into BigQuery.
type MediaIntelRecord struct {
	Id              string    `bigquery:"id" json:"id"`
	MediaUri        string    `bigquery:"media_uri" json:"media_uri"`
	Transcript      string    `bigquery:"transcript" json:"transcript"`
	SceneCount      int       `bigquery:"scene_count" json:"scene_count"`
	ScenesJson      string    `bigquery:"scenes_json" json:"scenes_json"`
	SuggestionsJson string    `bigquery:"suggestions_json" json:"suggestions_json"`
	EditingBrief    string    `bigquery:"editing_brief" json:"editing_brief"`
	CreateTime      time.Time `bigquery:"create_time" json:"create_time"`
}

// NewMediaIntelRecord flattens an analysis result and its suggestions into a
// row. Marshal failures are impossible for these types (no channels, no
// cycles), so the errors are intentionally discarded.
func NewMediaIntelRecord(id string, mediaUri string, analysis *AnalysisResult, suggestions []EditSuggestion, brief string) *MediaIntelRecord {
	scenes, _ := json.Marshal(analysis.Scenes)
	suggs, _ := json.Marshal(suggestions)
	return &MediaIntelRecord{
		Id:              id,
		MediaUri:        mediaUri,
		Transcript:      analysis.Transcript,
		SceneCount:      len(analysis.Scenes),
		ScenesJson:      string(scenes),
		SuggestionsJson: string(suggs),
		EditingBrief:    brief,
		CreateTime:      time.Now().UTC(),
	}
}
