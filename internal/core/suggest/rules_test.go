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

package suggest

import (
	"context"
	"testing"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRuleTableOrder verifies the rule table's fixed evaluation order, which
// is also the order of the suggestions Recommend returns.
func TestRuleTableOrder(t *testing.T) {
	engine := NewEngine(nil, nil)

	names := make([]string, 0)
	for _, r := range engine.rules() {
		names = append(names, r.name)
	}
	assert.Equal(t, []string{
		"scene-change-speed",
		"audio-issue-trim",
		"sentiment-filter",
		"scene-filters",
	}, names)
}

// TestRulesEvaluateIndependently verifies that each table entry can be run
// on its own and that an input firing one rule leaves the others silent.
func TestRulesEvaluateIndependently(t *testing.T) {
	engine := NewEngine(nil, nil)

	analysis := model.NewAnalysisResult()
	analysis.QualityIssues = append(analysis.QualityIssues, "abrupt scene change at 4s, another at 9s")

	for _, r := range engine.rules() {
		out := r.build(context.Background(), analysis)
		if r.name == "scene-change-speed" {
			require.Equal(t, 1, len(out))
			assert.Equal(t, model.SuggestionSpeed, out[0].Kind)
			require.NotNil(t, out[0].Speed)
			assert.Equal(t, sceneChangeRateMultiple, out[0].Speed.Rate)
		} else {
			assert.Empty(t, out, r.name)
		}
	}
}
