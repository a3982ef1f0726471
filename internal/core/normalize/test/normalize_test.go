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

// Package normalize_test contains unit tests for the annotation payload
// normalizer. The tests exercise the tolerant parsing rules: wrapper
// unwrapping, missing arrays, per-item skipping, offset suffix handling,
// and the scene time-range invariant.
package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseFlatPayload verifies that a flat annotation body (no `response`
// wrapper) parses into scenes, a transcript, and quality issues.
func TestParseFlatPayload(t *testing.T) {
	payload := `{
		"annotationResults": [{
			"shotAnnotations": [
				{"startTimeOffset": "0s", "endTimeOffset": "4.2s", "description": "opening shot"},
				{"startTimeOffset": "4.2s", "endTimeOffset": "12.34s", "description": "product close-up"}
			],
			"speechTranscriptions": [
				{"alternatives": [{"transcript": "welcome back everyone"}]}
			],
			"qualityIssues": ["low audio level"]
		}]
	}`

	result, err := normalize.Parse(json.RawMessage(payload))
	require.NoError(t, err)

	require.Equal(t, 2, len(result.Scenes))
	assert.Equal(t, 0.0, result.Scenes[0].StartOffset)
	assert.Equal(t, 4.2, result.Scenes[0].EndOffset)
	assert.Equal(t, "opening shot", result.Scenes[0].Description)
	assert.Equal(t, 12.34, result.Scenes[1].EndOffset)
	assert.Equal(t, "welcome back everyone", result.Transcript)
	assert.Equal(t, []string{"low audio level"}, result.QualityIssues)
}

// TestParseWrappedPayload verifies that the operation-style `response`
// wrapper is unwrapped before the annotation body is read.
func TestParseWrappedPayload(t *testing.T) {
	payload := `{
		"response": {
			"annotationResults": [{
				"shotAnnotations": [
					{"startTimeOffset": "1s", "endTimeOffset": "2s"}
				]
			}]
		}
	}`

	result, err := normalize.Parse(json.RawMessage(payload))
	require.NoError(t, err)

	require.Equal(t, 1, len(result.Scenes))
	assert.Equal(t, 1.0, result.Scenes[0].StartOffset)
	assert.Equal(t, 2.0, result.Scenes[0].EndOffset)
}

// TestParseEmptyPayload verifies that a structurally empty but well-formed
// body is a valid, empty result rather than an error.
func TestParseEmptyPayload(t *testing.T) {
	result, err := normalize.Parse(json.RawMessage(`{}`))
	require.NoError(t, err)

	assert.Equal(t, 0, len(result.Scenes))
	assert.Equal(t, "", result.Transcript)
	assert.Equal(t, 0, len(result.QualityIssues))
	assert.Equal(t, 0, len(result.Entities))
}

// TestParseSkipsMalformedItems verifies that items with non-numeric offsets
// or an inverted time range are dropped without failing the parse, so every
// surviving scene satisfies endOffset > startOffset.
func TestParseSkipsMalformedItems(t *testing.T) {
	payload := `{
		"annotationResults": [{
			"shotAnnotations": [
				{"startTimeOffset": "0s", "endTimeOffset": "3s", "description": "good"},
				{"startTimeOffset": "abc", "endTimeOffset": "5s", "description": "bad start"},
				{"startTimeOffset": "6s", "endTimeOffset": "6s", "description": "zero length"},
				{"startTimeOffset": "9s", "endTimeOffset": "7s", "description": "inverted"},
				{"endTimeOffset": "4s", "description": "missing start"},
				{"startTimeOffset": "10s", "endTimeOffset": "11.5s", "description": "also good"}
			]
		}]
	}`

	result, err := normalize.Parse(json.RawMessage(payload))
	require.NoError(t, err)

	require.Equal(t, 2, len(result.Scenes))
	for _, scene := range result.Scenes {
		assert.Greater(t, scene.EndOffset, scene.StartOffset)
	}
	assert.Equal(t, "good", result.Scenes[0].Description)
	assert.Equal(t, "also good", result.Scenes[1].Description)
}

// TestParseNumericOffsets verifies that bare JSON numbers are accepted in
// place of the "12.34s" string form.
func TestParseNumericOffsets(t *testing.T) {
	payload := `{
		"annotationResults": [{
			"shotAnnotations": [
				{"startTimeOffset": 1.5, "endTimeOffset": 3.25}
			]
		}]
	}`

	result, err := normalize.Parse(json.RawMessage(payload))
	require.NoError(t, err)

	require.Equal(t, 1, len(result.Scenes))
	assert.Equal(t, 1.5, result.Scenes[0].StartOffset)
	assert.Equal(t, 3.25, result.Scenes[0].EndOffset)
}

// TestParseMultipleTranscriptions verifies that transcription fragments are
// joined with single spaces and that empty alternatives are skipped.
func TestParseMultipleTranscriptions(t *testing.T) {
	payload := `{
		"annotationResults": [{
			"speechTranscriptions": [
				{"alternatives": [{"transcript": "first fragment"}]},
				{"alternatives": []},
				{"alternatives": [{"transcript": "second fragment"}]}
			]
		}]
	}`

	result, err := normalize.Parse(json.RawMessage(payload))
	require.NoError(t, err)

	assert.Equal(t, "first fragment second fragment", result.Transcript)
}

// TestParseQualityIssueObjects verifies that quality issues are accepted
// both as bare strings and as objects with a description field.
func TestParseQualityIssueObjects(t *testing.T) {
	payload := `{
		"annotationResults": [{
			"qualityIssues": [
				"scene change detected",
				{"description": "low audio in segment two"},
				42
			]
		}]
	}`

	result, err := normalize.Parse(json.RawMessage(payload))
	require.NoError(t, err)

	assert.Equal(t, []string{"scene change detected", "low audio in segment two"}, result.QualityIssues)
}

// TestParseRejectsNonObject verifies that a body which is not a JSON object
// at all yields a ParseError.
func TestParseRejectsNonObject(t *testing.T) {
	_, err := normalize.Parse(json.RawMessage(`"not an object"`))

	var parseErr *normalize.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

// TestParseRejectsAbsentBody verifies that a zero-length body is an error,
// not an empty result. Only the well-formed empty object is the tolerated
// empty case; an absent body means the annotation call produced nothing.
func TestParseRejectsAbsentBody(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, {}} {
		result, err := normalize.Parse(raw)
		assert.Nil(t, result)

		var parseErr *normalize.ParseError
		assert.ErrorAs(t, err, &parseErr)
	}
}
