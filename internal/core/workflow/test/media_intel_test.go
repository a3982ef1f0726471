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

// Package workflow_test contains tests for the core application workflows.
// This file tests the media intelligence pipeline: its assembly from
// configuration, its template validation, its error containment, and the
// analysis command sequence running end to end against a local fake of the
// remote analysis endpoints.
package workflow_test

import (
	"context"
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
	"github.com/jaycherian/gcp-go-media-intel/internal/core/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

// fixedTokens is a TokenSource double returning a constant bearer token.
type fixedTokens struct{}

func (fixedTokens) Token(_ context.Context) (string, error) {
	return "test-token", nil
}

// newAnalysisClient points every analysis endpoint at the given server.
func newAnalysisClient(server *httptest.Server) *cloud.AnalysisClient {
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

// newFakeAnalysisBackend serves a canned annotation payload with one scene
// and a transcript, plus matching language-service answers.
func newFakeAnalysisBackend() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/videos:annotate":
			fmt.Fprint(w, `{"annotationResults":[{
				"shotAnnotations":[
					{"startTimeOffset":"0s","endTimeOffset":"6.5s","description":"presenter at the desk"}
				],
				"speechTranscriptions":[
					{"alternatives":[{"transcript":"welcome back everyone"}]}
				]
			}]}`)
		case "/v1/documents:analyzeSentiment":
			fmt.Fprint(w, `{"documentSentiment":{"score":0.9,"magnitude":1.2}}`)
		case "/v1/documents:analyzeEntities":
			fmt.Fprint(w, `{"entities":[{"name":"presenter","type":"PERSON","salience":0.7}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

// TestPipelineAssembly verifies that the pipeline builds from configuration
// and that a failure in its first command is contained: the chain records
// exactly that command's error and stops before touching any downstream
// client.
func TestPipelineAssembly(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "pipeline-assembly-test")
	defer span.End()

	pipeline := workflow.NewMediaIntelPipeline(config, &cloud.ServiceClients{}, "editorial-flash")
	require.NotNil(t, pipeline)

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(traceCtx)
	chainCtx.Add(cor.CtxIn, "this is not a GCS notification")

	pipeline.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	require.Equal(t, 1, len(chainCtx.GetErrors()))
	_, ok := chainCtx.GetErrors()["media-trigger-to-gcs-object"]
	assert.True(t, ok)

	span.SetStatus(codes.Ok, "passed - pipeline assembly test")
}

// TestPipelineRejectsBadBriefTemplate verifies that the pipeline refuses to
// build around an unparseable brief template.
func TestPipelineRejectsBadBriefTemplate(t *testing.T) {
	broken := *config
	broken.PromptTemplates.BriefPrompt = "Analysis: {{.ANALYSIS_JSON"

	assert.Panics(t, func() {
		workflow.NewMediaIntelPipeline(&broken, &cloud.ServiceClients{}, "editorial-flash")
	})
}

// TestAnalysisCommandSequence runs the pipeline's analysis stages — annotate,
// normalize, enrich, suggest — as a chain against the fake backend and
// verifies the piping between them plus the parked results the persistence
// step depends on.
func TestAnalysisCommandSequence(t *testing.T) {
	server := newFakeAnalysisBackend()
	defer server.Close()
	analysis := newAnalysisClient(server)

	traceCtx, span := tracer.Start(ctx, "analysis-sequence-test")
	defer span.End()

	chain := cor.NewBaseChain("analysis-sequence")
	chain.AddCommand(commands.NewVideoAnnotate("annotate-video", analysis))
	chain.AddCommand(commands.NewAnnotationToStruct("normalize-annotation"))
	chain.AddCommand(commands.NewEntityEnricher("enrich-entities", analysis))
	chain.AddCommand(commands.NewSuggestionBuilder("build-suggestions", suggest.NewEngine(analysis, nil)))

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(traceCtx)
	chainCtx.Add(cor.CtxIn, []byte("fake media bytes"))

	chain.Execute(chainCtx)

	for k, err := range chainCtx.GetErrors() {
		fmt.Printf("Error: (%s): %v\n", k, err)
	}
	require.False(t, chainCtx.HasErrors())

	result := chainCtx.Get(commands.GetAnalysisResultName()).(*model.AnalysisResult)
	require.Equal(t, 1, len(result.Scenes))
	assert.Equal(t, "presenter at the desk", result.Scenes[0].Description)
	assert.Equal(t, "welcome back everyone", result.Transcript)
	require.Equal(t, 1, len(result.Entities))
	assert.Equal(t, "presenter", result.Entities[0].Name)

	suggestions := chainCtx.Get(commands.GetSuggestionsName()).([]model.EditSuggestion)
	assert.True(t, len(suggestions) > 0)

	span.SetStatus(codes.Ok, "passed - analysis sequence test")
	logger.InfoContext(traceCtx, "analysis sequence complete", "suggestions", len(suggestions))
}
