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

// Package normalize converts raw annotation payloads from the analysis
// platform into the internal analysis model. The upstream payloads are
// loosely typed and vary between a wrapped and a flat layout, so the parser
// is deliberately defensive:
//
//   - A top-level `response` wrapper is unwrapped when present; otherwise
//     the body itself is the annotation payload.
//   - Missing `annotationResults`, `shotAnnotations`, or
//     `speechTranscriptions` arrays mean "empty", never "error".
//   - A malformed list item is skipped and the rest of the list is kept. One
//     bad entry never aborts the whole parse.
//   - Time offsets arrive as strings like "12.34s"; the unit suffix is
//     stripped before numeric parsing.
//   - Scenes whose end offset does not exceed their start offset are
//     dropped.
//
// A structurally empty but well-formed payload normalizes to an empty
// AnalysisResult, which is a valid outcome. An absent (zero-length) body is
// not: the caller expected an annotation payload and got nothing, which is a
// *ParseError.
package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
)

// ParseError indicates the payload was not decodable at all. Per-item
// defects inside a decodable payload never produce it.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("normalize: %s", e.Reason)
}

// wireShot is the tolerant wire shape of one shot annotation. Fields are raw
// so that one badly typed field invalidates only its own item.
type wireShot struct {
	StartTimeOffset json.RawMessage `json:"startTimeOffset"`
	EndTimeOffset   json.RawMessage `json:"endTimeOffset"`
	Description     string          `json:"description"`
}

// wireAnnotationResult is one entry of the annotationResults list.
type wireAnnotationResult struct {
	ShotAnnotations      []json.RawMessage `json:"shotAnnotations"`
	SpeechTranscriptions []json.RawMessage `json:"speechTranscriptions"`
	QualityIssues        []json.RawMessage `json:"qualityIssues"`
}

// Parse converts a raw annotation payload into an AnalysisResult.
//
// Inputs:
//   - raw: The JSON body returned by the video annotation call or the
//     operation poller.
//
// Outputs:
//   - *model.AnalysisResult: The normalized result. Never nil on success;
//     all slices are initialized, and Transcript is "" rather than absent.
//   - error: A *ParseError only when the payload is absent or not JSON at
//     all.
func Parse(raw json.RawMessage) (*model.AnalysisResult, error) {
	if len(raw) == 0 {
		return nil, &ParseError{Reason: "absent response body"}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &ParseError{Reason: "payload is not a JSON object"}
	}

	// Prefer the operation-style wrapper, fall back to the flat layout.
	body := envelope
	if wrapped, ok := envelope["response"]; ok {
		inner := map[string]json.RawMessage{}
		if err := json.Unmarshal(wrapped, &inner); err == nil {
			body = inner
		}
	}

	result := model.NewAnalysisResult()

	var results []json.RawMessage
	if rawResults, ok := body["annotationResults"]; ok {
		// An undecodable results array degrades to empty, matching the
		// missing-array case.
		_ = json.Unmarshal(rawResults, &results)
	}

	var transcript strings.Builder
	for _, rawResult := range results {
		entry := wireAnnotationResult{}
		if err := json.Unmarshal(rawResult, &entry); err != nil {
			continue
		}

		for _, rawShot := range entry.ShotAnnotations {
			if scene, ok := parseShot(rawShot); ok {
				result.Scenes = append(result.Scenes, scene)
			}
		}

		for _, rawTranscription := range entry.SpeechTranscriptions {
			if text, ok := parseTranscription(rawTranscription); ok && text != "" {
				if transcript.Len() > 0 {
					transcript.WriteString(" ")
				}
				transcript.WriteString(text)
			}
		}

		for _, rawIssue := range entry.QualityIssues {
			if issue, ok := parseQualityIssue(rawIssue); ok && issue != "" {
				result.QualityIssues = append(result.QualityIssues, issue)
			}
		}
	}

	result.Transcript = transcript.String()
	return result, nil
}

// parseShot converts one shot annotation into a Scene, rejecting entries
// with unusable offsets or an inverted time range.
func parseShot(raw json.RawMessage) (*model.Scene, bool) {
	shot := wireShot{}
	if err := json.Unmarshal(raw, &shot); err != nil {
		return nil, false
	}

	start, ok := parseOffset(shot.StartTimeOffset)
	if !ok {
		return nil, false
	}
	end, ok := parseOffset(shot.EndTimeOffset)
	if !ok {
		return nil, false
	}
	if end <= start {
		return nil, false
	}

	return &model.Scene{
		StartOffset: start,
		EndOffset:   end,
		Description: shot.Description,
	}, true
}

// parseOffset accepts either the string form "12.34s" or a bare JSON number
// and returns the offset in seconds.
func parseOffset(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		trimmed := strings.TrimSuffix(strings.TrimSpace(asString), "s")
		value, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return value, true
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, true
	}
	return 0, false
}

// parseTranscription pulls the best alternative's transcript text from one
// speech transcription entry.
func parseTranscription(raw json.RawMessage) (string, bool) {
	var transcription struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	}
	if err := json.Unmarshal(raw, &transcription); err != nil {
		return "", false
	}
	if len(transcription.Alternatives) == 0 {
		return "", false
	}
	return strings.TrimSpace(transcription.Alternatives[0].Transcript), true
}

// parseQualityIssue accepts either a bare string or an object carrying a
// `description` field.
func parseQualityIssue(raw json.RawMessage) (string, bool) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString), true
	}

	var asObject struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil {
		return strings.TrimSpace(asObject.Description), true
	}
	return "", false
}
