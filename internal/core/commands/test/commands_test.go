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

// Package commands_test contains unit tests for the pipeline commands that
// can run without live GCP services: trigger parsing, payload
// normalization, suggestion building, and entity enrichment against a
// local fake language endpoint.
package commands_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/commands"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/suggest"
	test "github.com/jaycherian/gcp-go-media-intel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// newChainContext seeds a chain context the way the Pub/Sub listener does.
func newChainContext(input interface{}) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, input)
	return chainCtx
}

// fixedTokens is a TokenSource double returning a constant bearer token.
type fixedTokens struct{}

func (fixedTokens) Token(_ context.Context) (string, error) {
	return "test-token", nil
}

// newLanguageClient builds an analysis client whose language endpoint
// points at the given server.
func newLanguageClient(server *httptest.Server) *cloud.AnalysisClient {
	return &cloud.AnalysisClient{
		Tokens:           fixedTokens{},
		HTTPClient:       server.Client(),
		VideoEndpoint:    server.URL,
		SpeechEndpoint:   server.URL,
		LanguageEndpoint: server.URL,
		Limiter:          rate.NewLimiter(rate.Inf, 1),
		Poller: &cloud.OperationPoller{
			Tokens:      fixedTokens{},
			HTTPClient:  server.Client(),
			Endpoint:    server.URL,
			Interval:    time.Millisecond,
			MaxAttempts: 10,
		},
	}
}

// TestMediaTriggerToGCSObject verifies that a GCS finalize notification is
// reduced to a typed object reference and that the media URI is parked for
// the persistence step.
func TestMediaTriggerToGCSObject(t *testing.T) {
	chainCtx := newChainContext(test.GetTestUploadMessageText())

	cmd := commands.NewMediaTriggerToGCSObject("trigger-test")
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())

	obj := chainCtx.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)
	assert.Equal(t, "media_intel_source_test", obj.Bucket)
	assert.Equal(t, "test-clip-001.mp4", obj.Name)
	assert.Equal(t, "video/mp4", obj.MIMEType)
	assert.Equal(t, "gs://media_intel_source_test/test-clip-001.mp4", chainCtx.Get(commands.GetMediaUriName()))
}

// TestMediaTriggerRejectsMalformedPayload verifies that an undecodable
// notification records a chain error instead of panicking.
func TestMediaTriggerRejectsMalformedPayload(t *testing.T) {
	chainCtx := newChainContext("{not json")

	cmd := commands.NewMediaTriggerToGCSObject("trigger-test")
	cmd.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
}

// TestAnnotationToStruct verifies the raw payload is normalized and parked
// under the well-known analysis key.
func TestAnnotationToStruct(t *testing.T) {
	raw := json.RawMessage(`{"annotationResults":[{
		"shotAnnotations":[{"startTimeOffset":"1s","endTimeOffset":"4.5s","description":"opening shot"}],
		"speechTranscriptions":[{"alternatives":[{"transcript":"hello there"}]}]
	}]}`)
	chainCtx := newChainContext(raw)

	cmd := commands.NewAnnotationToStruct("normalize-test")
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())

	result := chainCtx.Get(commands.GetAnalysisResultName()).(*model.AnalysisResult)
	require.Equal(t, 1, len(result.Scenes))
	assert.Equal(t, 1.0, result.Scenes[0].StartOffset)
	assert.Equal(t, "hello there", result.Transcript)
	assert.Same(t, result, chainCtx.Get(cor.CtxOut).(*model.AnalysisResult))
}

// TestAnnotationToStructRejectsNonObject verifies that a payload that is
// not a JSON object fails the chain.
func TestAnnotationToStructRejectsNonObject(t *testing.T) {
	chainCtx := newChainContext(json.RawMessage(`[1,2,3]`))

	cmd := commands.NewAnnotationToStruct("normalize-test")
	cmd.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
}

// TestSuggestionBuilder verifies the engine output lands both in the piped
// output and under the well-known suggestions key.
func TestSuggestionBuilder(t *testing.T) {
	analysis := model.NewAnalysisResult()
	analysis.Scenes = []*model.Scene{
		{StartOffset: 0, EndOffset: 4, Description: "exterior landscape at dawn"},
	}
	chainCtx := newChainContext(analysis)

	cmd := commands.NewSuggestionBuilder("suggest-test", suggest.NewEngine(nil, nil))
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())

	suggestions := chainCtx.Get(commands.GetSuggestionsName()).([]model.EditSuggestion)
	require.True(t, len(suggestions) > 0)
	assert.Equal(t, model.SuggestionFilter, suggestions[0].Kind)
	assert.Equal(t, model.FilterContrast, suggestions[0].Filter.Kind)
}

// TestEntityEnricher verifies that transcript entities are attached and
// that a language-service failure does not fail the chain.
func TestEntityEnricher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/documents:analyzeEntities", r.URL.Path)
		fmt.Fprint(w, `{"entities":[{"name":"narrator","type":"PERSON","salience":0.5}]}`)
	}))
	defer server.Close()

	analysis := model.NewAnalysisResult()
	analysis.Transcript = "the narrator speaks"
	chainCtx := newChainContext(analysis)

	cmd := commands.NewEntityEnricher("enrich-test", newLanguageClient(server))
	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	require.Equal(t, 1, len(analysis.Entities))
	assert.Equal(t, "narrator", analysis.Entities[0].Name)
}

// TestEntityEnricherSwallowsFailure verifies the best-effort contract: a
// failing language endpoint leaves the chain healthy and the result
// without entities.
func TestEntityEnricherSwallowsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	analysis := model.NewAnalysisResult()
	analysis.Transcript = "some transcript"
	chainCtx := newChainContext(analysis)

	cmd := commands.NewEntityEnricher("enrich-test", newLanguageClient(server))
	cmd.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	assert.Equal(t, 0, len(analysis.Entities))
}
