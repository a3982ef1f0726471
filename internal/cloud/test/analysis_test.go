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

// Package cloud_test contains unit tests for the analysis client: request
// shapes, bearer auth, the synchronous-versus-operation split on video
// annotation, and the RemoteAPIError mapping for structured and
// unstructured error bodies.
package cloud_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// newClient builds an analysis client whose three endpoints all point at
// the same test server.
func newClient(server *httptest.Server) *cloud.AnalysisClient {
	return &cloud.AnalysisClient{
		Tokens:           staticTokens{},
		HTTPClient:       server.Client(),
		VideoEndpoint:    server.URL,
		SpeechEndpoint:   server.URL,
		LanguageEndpoint: server.URL,
		Limiter:          rate.NewLimiter(rate.Inf, 1),
		Poller: &cloud.OperationPoller{
			Tokens:      staticTokens{},
			HTTPClient:  server.Client(),
			Endpoint:    server.URL,
			Interval:    time.Millisecond,
			MaxAttempts: 10,
		},
	}
}

// TestAnnotateVideoSynchronous verifies the request body shape and the
// direct return of a synchronous annotation response.
func TestAnnotateVideoSynchronous(t *testing.T) {
	mediaBytes := []byte("fake video bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/videos:annotate", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body struct {
			InputContent string   `json:"inputContent"`
			Features     []string `json:"features"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, base64.StdEncoding.EncodeToString(mediaBytes), body.InputContent)
		assert.Equal(t, cloud.DefaultVideoFeatures, body.Features)

		fmt.Fprint(w, `{"annotationResults":[{"shotAnnotations":[]}]}`)
	}))
	defer server.Close()

	result, err := newClient(server).AnnotateVideo(context.Background(), mediaBytes)
	require.NoError(t, err)
	assert.JSONEq(t, `{"annotationResults":[{"shotAnnotations":[]}]}`, string(result))
}

// TestAnnotateVideoLongRunning verifies that a response carrying an
// operation name switches the call into the poller.
func TestAnnotateVideoLongRunning(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/videos:annotate":
			fmt.Fprint(w, `{"name":"op-video-1"}`)
		case "/v1/operations/op-video-1":
			fmt.Fprint(w, `{"name":"op-video-1","done":true,"response":{"annotationResults":[]}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	result, err := newClient(server).AnnotateVideo(context.Background(), []byte("media"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"annotationResults":[]}`, string(result))
}

// TestTranscribeJoinsResults verifies the speech request config and the
// joining of per-result transcripts.
func TestTranscribeJoinsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/speech:recognize", r.URL.Path)

		var body struct {
			Config struct {
				Encoding                   string `json:"encoding"`
				SampleRateHertz            int    `json:"sampleRateHertz"`
				LanguageCode               string `json:"languageCode"`
				EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
			} `json:"config"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "LINEAR16", body.Config.Encoding)
		assert.Equal(t, 16000, body.Config.SampleRateHertz)
		assert.Equal(t, "en-US", body.Config.LanguageCode)
		assert.True(t, body.Config.EnableAutomaticPunctuation)

		fmt.Fprint(w, `{"results":[
			{"alternatives":[{"transcript":"hello"}]},
			{"alternatives":[{"transcript":"world"}]}
		]}`)
	}))
	defer server.Close()

	transcript, err := newClient(server).Transcribe(context.Background(), []byte("audio"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", transcript)
}

// TestAnalyzeSentimentAndEntities verifies the plain-text document request
// shape shared by the two language calls and their response mapping.
func TestAnalyzeSentimentAndEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Document struct {
				Type    string `json:"type"`
				Content string `json:"content"`
			} `json:"document"`
			EncodingType string `json:"encodingType"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PLAIN_TEXT", body.Document.Type)
		assert.Equal(t, "UTF8", body.EncodingType)

		switch r.URL.Path {
		case "/v1/documents:analyzeSentiment":
			fmt.Fprint(w, `{"documentSentiment":{"score":0.8,"magnitude":1.9}}`)
		case "/v1/documents:analyzeEntities":
			fmt.Fprint(w, `{"entities":[{"name":"presenter","type":"PERSON","salience":0.62}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := newClient(server)

	score, err := client.AnalyzeSentiment(context.Background(), "great video")
	require.NoError(t, err)
	assert.Equal(t, 0.8, score.Score)
	assert.Equal(t, 1.9, score.Magnitude)

	entities, err := client.AnalyzeEntities(context.Background(), "great video")
	require.NoError(t, err)
	require.Equal(t, 1, len(entities))
	assert.Equal(t, "presenter", entities[0].Name)
	assert.Equal(t, "PERSON", entities[0].Type)
	assert.Equal(t, 0.62, entities[0].Salience)
}

// TestRemoteAPIErrorStructured verifies that a structured error body maps
// its message into the RemoteAPIError.
func TestRemoteAPIErrorStructured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"unsupported media container"}}`)
	}))
	defer server.Close()

	_, err := newClient(server).AnnotateVideo(context.Background(), []byte("media"))

	var apiErr *cloud.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "unsupported media container", apiErr.Message)
}

// TestRemoteAPIErrorUnstructured verifies the "unknown" fallback for
// unstructured error bodies.
func TestRemoteAPIErrorUnstructured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "upstream exploded")
	}))
	defer server.Close()

	_, err := newClient(server).Transcribe(context.Background(), []byte("audio"))

	var apiErr *cloud.RemoteAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "unknown", apiErr.Message)
}
