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

// Package interpret maps free-text edit instructions onto concrete media
// operations. Commands are not parsed into a grammar; matching is
// case-insensitive substring search over the whole instruction, evaluated
// in a fixed priority:
//
//  1. "highlight reel": analyze the media, pick the strongest scenes, and
//     compose them into a single output.
//  2. "enhance": apply the filters named in the instruction (brightness,
//     contrast, color), or a mild default brightness lift when none are
//     named.
//  3. Anything else: return the input reference unchanged. An unrecognized
//     instruction is not an error.
//
// Media manipulation is delegated entirely to the media.Processor
// collaborator; this package only decides what to ask for.
package interpret

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
	"github.com/jaycherian/gcp-go-media-intel/internal/media"
)

// Highlight-reel selection policy.
const (
	highlightMinDuration = 3.0  // Scenes shorter than this read as flicker.
	highlightMaxDuration = 10.0 // Scenes longer than this drag the reel.
	highlightMaxScenes   = 5
)

const enhanceDefaultBrightness = 0.05

// Analyzer runs a full analysis pass over a stored media reference. The
// production implementation wraps the analysis client and the normalizer.
type Analyzer interface {
	Analyze(ctx context.Context, mediaRef string) (*model.AnalysisResult, error)
}

// Interpreter turns an instruction plus a media reference into a new media
// reference.
type Interpreter struct {
	Analyzer  Analyzer
	Processor media.Processor
	Logger    *slog.Logger
}

// NewInterpreter wires an interpreter from its collaborators.
func NewInterpreter(analyzer Analyzer, processor media.Processor, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{Analyzer: analyzer, Processor: processor, Logger: logger}
}

// Interpret executes the instruction against the media reference and
// returns the resulting reference. An instruction that matches no known
// command returns the input unchanged, with no collaborator calls.
func (i *Interpreter) Interpret(ctx context.Context, command string, mediaRef string) (string, error) {
	lowered := strings.ToLower(command)

	switch {
	case strings.Contains(lowered, "highlight reel"):
		return i.highlightReel(ctx, mediaRef)
	case strings.Contains(lowered, "enhance"):
		return i.enhance(ctx, lowered, mediaRef)
	default:
		return mediaRef, nil
	}
}

// highlightReel analyzes the media, selects the strongest scenes, extracts
// them as clips, and composes the clips into one output.
//
// Selection: scenes between 3 and 10 seconds with a non-empty description,
// sorted by duration descending, capped at five. When nothing qualifies the
// original reference is returned unchanged rather than producing an empty
// composition.
func (i *Interpreter) highlightReel(ctx context.Context, mediaRef string) (string, error) {
	analysis, err := i.Analyzer.Analyze(ctx, mediaRef)
	if err != nil {
		return "", err
	}

	candidates := selectHighlightScenes(analysis.Scenes)
	if len(candidates) == 0 {
		i.Logger.Info("no scenes qualified for a highlight reel; returning source unchanged", "media", mediaRef)
		return mediaRef, nil
	}

	clips := make([]media.Clip, 0, len(candidates))
	for _, scene := range candidates {
		clip, err := i.Processor.ExtractClip(ctx, mediaRef, scene.StartOffset, scene.Duration())
		if err != nil {
			return "", err
		}
		clips = append(clips, clip)
	}

	return i.Processor.ComposeClips(ctx, clips)
}

// selectHighlightScenes applies the duration window and description filter,
// then orders by duration descending and caps the result. The sort is
// stable so equal durations keep their source order.
func selectHighlightScenes(scenes []*model.Scene) []*model.Scene {
	candidates := make([]*model.Scene, 0, len(scenes))
	for _, scene := range scenes {
		duration := scene.Duration()
		if duration < highlightMinDuration || duration > highlightMaxDuration {
			continue
		}
		if strings.TrimSpace(scene.Description) == "" {
			continue
		}
		candidates = append(candidates, scene)
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Duration() > candidates[b].Duration()
	})

	if len(candidates) > highlightMaxScenes {
		candidates = candidates[:highlightMaxScenes]
	}
	return candidates
}

// enhance applies each filter named in the instruction sequentially to the
// running output. An instruction naming none applies one mild brightness
// lift.
func (i *Interpreter) enhance(ctx context.Context, lowered string, mediaRef string) (string, error) {
	filters := make([]model.FilterParams, 0, 3)
	if strings.Contains(lowered, "bright") {
		filters = append(filters, model.FilterParams{Kind: model.FilterBrightness, Amount: 0.1})
	}
	if strings.Contains(lowered, "contrast") {
		filters = append(filters, model.FilterParams{Kind: model.FilterContrast, Amount: 0.1})
	}
	if strings.Contains(lowered, "color") {
		filters = append(filters, model.FilterParams{Kind: model.FilterSaturation, Amount: 0.1})
	}
	if len(filters) == 0 {
		filters = append(filters, model.FilterParams{Kind: model.FilterBrightness, Amount: enhanceDefaultBrightness})
	}

	current := mediaRef
	for _, filter := range filters {
		next, err := i.Processor.ApplyFilter(ctx, current, filter)
		if err != nil {
			return "", err
		}
		current = next
	}
	return current, nil
}
