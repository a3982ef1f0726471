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

// Package interpret_test contains unit tests for the command interpreter:
// highlight-reel scene selection and ordering, enhance keyword mapping, and
// the pass-through behavior for unrecognized instructions.
package interpret_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/interpret"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
	"github.com/jaycherian/gcp-go-media-intel/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cannedAnalyzer returns a fixed analysis result and records calls.
type cannedAnalyzer struct {
	result *model.AnalysisResult
	calls  int
}

func (c *cannedAnalyzer) Analyze(_ context.Context, _ string) (*model.AnalysisResult, error) {
	c.calls++
	return c.result, nil
}

// recordingProcessor records every collaborator call and returns
// deterministic references.
type recordingProcessor struct {
	extracted []extractCall
	composed  [][]media.Clip
	filtered  []model.FilterParams
}

type extractCall struct {
	start    float64
	duration float64
}

func (r *recordingProcessor) ExtractClip(_ context.Context, _ string, start float64, duration float64) (media.Clip, error) {
	r.extracted = append(r.extracted, extractCall{start: start, duration: duration})
	return media.Clip{Path: fmt.Sprintf("clip-%d.mp4", len(r.extracted))}, nil
}

func (r *recordingProcessor) ComposeClips(_ context.Context, clips []media.Clip) (string, error) {
	r.composed = append(r.composed, clips)
	return "gs://renders/reel.mp4", nil
}

func (r *recordingProcessor) ApplyFilter(_ context.Context, mediaRef string, filter model.FilterParams) (string, error) {
	r.filtered = append(r.filtered, filter)
	return mediaRef + "+" + string(filter.Kind), nil
}

// scenesWithDurations builds back-to-back described scenes with the given
// durations.
func scenesWithDurations(durations ...float64) []*model.Scene {
	scenes := make([]*model.Scene, 0, len(durations))
	start := 0.0
	for i, d := range durations {
		scenes = append(scenes, &model.Scene{
			StartOffset: start,
			EndOffset:   start + d,
			Description: fmt.Sprintf("scene %d", i+1),
		})
		start += d
	}
	return scenes
}

// TestHighlightReelSelection verifies the selection policy: durations
// [2, 4, 9, 11, 3, 7, 5, 8] yield the five in-window scenes ordered
// [9, 8, 7, 5, 4], excluding the 2s and 11s scenes.
func TestHighlightReelSelection(t *testing.T) {
	analysis := model.NewAnalysisResult()
	analysis.Scenes = scenesWithDurations(2, 4, 9, 11, 3, 7, 5, 8)
	analyzer := &cannedAnalyzer{result: analysis}
	processor := &recordingProcessor{}
	interpreter := interpret.NewInterpreter(analyzer, processor, nil)

	out, err := interpreter.Interpret(context.Background(), "make me a Highlight Reel", "gs://src/video.mp4")
	require.NoError(t, err)
	assert.Equal(t, "gs://renders/reel.mp4", out)

	require.Equal(t, 5, len(processor.extracted))
	durations := make([]float64, 0, 5)
	for _, call := range processor.extracted {
		durations = append(durations, call.duration)
	}
	assert.Equal(t, []float64{9, 8, 7, 5, 4}, durations)

	require.Equal(t, 1, len(processor.composed))
	assert.Equal(t, 5, len(processor.composed[0]))
}

// TestHighlightReelSkipsUndescribedScenes verifies that scenes without a
// description never qualify, even inside the duration window.
func TestHighlightReelSkipsUndescribedScenes(t *testing.T) {
	analysis := model.NewAnalysisResult()
	analysis.Scenes = []*model.Scene{
		{StartOffset: 0, EndOffset: 5, Description: ""},
		{StartOffset: 5, EndOffset: 9, Description: "keeper"},
	}
	analyzer := &cannedAnalyzer{result: analysis}
	processor := &recordingProcessor{}
	interpreter := interpret.NewInterpreter(analyzer, processor, nil)

	_, err := interpreter.Interpret(context.Background(), "highlight reel please", "gs://src/video.mp4")
	require.NoError(t, err)

	require.Equal(t, 1, len(processor.extracted))
	assert.Equal(t, 5.0, processor.extracted[0].start)
	assert.Equal(t, 4.0, processor.extracted[0].duration)
}

// TestHighlightReelNoCandidates verifies that a reel with zero qualifying
// scenes returns the source reference unchanged instead of composing an
// empty clip list.
func TestHighlightReelNoCandidates(t *testing.T) {
	analysis := model.NewAnalysisResult()
	analysis.Scenes = scenesWithDurations(1, 15)
	analyzer := &cannedAnalyzer{result: analysis}
	processor := &recordingProcessor{}
	interpreter := interpret.NewInterpreter(analyzer, processor, nil)

	out, err := interpreter.Interpret(context.Background(), "highlight reel", "gs://src/video.mp4")
	require.NoError(t, err)
	assert.Equal(t, "gs://src/video.mp4", out)
	assert.Equal(t, 0, len(processor.extracted))
	assert.Equal(t, 0, len(processor.composed))
}

// TestEnhanceAppliesNamedFilters verifies that each named keyword maps to
// its filter and the filters chain sequentially on the running output.
func TestEnhanceAppliesNamedFilters(t *testing.T) {
	processor := &recordingProcessor{}
	interpreter := interpret.NewInterpreter(&cannedAnalyzer{}, processor, nil)

	out, err := interpreter.Interpret(context.Background(), "Enhance the brightness and color", "ref")
	require.NoError(t, err)

	require.Equal(t, 2, len(processor.filtered))
	assert.Equal(t, model.FilterBrightness, processor.filtered[0].Kind)
	assert.Equal(t, 0.1, processor.filtered[0].Amount)
	assert.Equal(t, model.FilterSaturation, processor.filtered[1].Kind)
	assert.Equal(t, "ref+brightness+saturation", out)
}

// TestEnhanceDefaultBrightness verifies the mild default when no filter
// keyword is present.
func TestEnhanceDefaultBrightness(t *testing.T) {
	processor := &recordingProcessor{}
	interpreter := interpret.NewInterpreter(&cannedAnalyzer{}, processor, nil)

	_, err := interpreter.Interpret(context.Background(), "please enhance this", "ref")
	require.NoError(t, err)

	require.Equal(t, 1, len(processor.filtered))
	assert.Equal(t, model.FilterBrightness, processor.filtered[0].Kind)
	assert.Equal(t, 0.05, processor.filtered[0].Amount)
}

// TestUnrecognizedCommandPassesThrough verifies that an instruction
// matching neither command returns the input with zero collaborator calls.
func TestUnrecognizedCommandPassesThrough(t *testing.T) {
	analyzer := &cannedAnalyzer{}
	processor := &recordingProcessor{}
	interpreter := interpret.NewInterpreter(analyzer, processor, nil)

	out, err := interpreter.Interpret(context.Background(), "rotate ninety degrees", "gs://src/video.mp4")
	require.NoError(t, err)

	assert.Equal(t, "gs://src/video.mp4", out)
	assert.Equal(t, 0, analyzer.calls)
	assert.Equal(t, 0, len(processor.extracted))
	assert.Equal(t, 0, len(processor.composed))
	assert.Equal(t, 0, len(processor.filtered))
}
