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

// Package cloud provides components for interacting with the remote media
// analysis platform. This file implements the analysis client: authenticated
// HTTP access to the three remote capabilities the core depends on — video
// intelligence, speech transcription, and text sentiment/entity analysis.
//
// Logic Flow (per call):
//  1. Wait on the client's rate limiter so bursts of concurrent analyses
//     stay inside the platform quota.
//  2. Obtain a bearer token from the token source and attach it.
//  3. POST the JSON request body (media payloads are base64-encoded inline).
//  4. A non-2xx answer becomes a *RemoteAPIError carrying the structured
//     error message when the body had one, or "unknown" otherwise.
//  5. Video annotation may answer synchronously or with an operation handle;
//     when the response carries a `name`, the call switches to the bounded
//     operation poller and returns the polled result.
//
// The raw annotation payload is returned as json.RawMessage; turning it into
// the internal model is the normalizer's job, not this client's.
package cloud

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
)

// DefaultVideoFeatures is the feature set requested for every video
// annotation: shot boundaries for scenes plus embedded speech transcription.
var DefaultVideoFeatures = []string{"SHOT_CHANGE_DETECTION", "SPEECH_TRANSCRIPTION"}

// AnalysisClient issues authenticated calls against the analysis endpoints.
// It holds no mutable state of its own; the token cache lives in the token
// source, so the client is safe for concurrent use.
type AnalysisClient struct {
	Tokens           TokenSource
	HTTPClient       *http.Client
	VideoEndpoint    string           // Base URL of the video intelligence service.
	SpeechEndpoint   string           // Base URL of the speech transcription service.
	LanguageEndpoint string           // Base URL of the text analysis service.
	Limiter          *rate.Limiter    // Request throttle shared across capabilities.
	Poller           *OperationPoller // Poller for long-running video operations.
}

// NewAnalysisClient wires an analysis client from configuration.
//
// Inputs:
//   - tokens: The token source used to authenticate every request.
//   - cfg: The analysis section of the application configuration.
//
// Outputs:
//   - *AnalysisClient: A ready client whose poller shares the same token
//     source and HTTP client.
func NewAnalysisClient(tokens TokenSource, cfg *AnalysisConfig) *AnalysisClient {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	return &AnalysisClient{
		Tokens:           tokens,
		HTTPClient:       httpClient,
		VideoEndpoint:    cfg.VideoEndpoint,
		SpeechEndpoint:   cfg.SpeechEndpoint,
		LanguageEndpoint: cfg.LanguageEndpoint,
		Limiter:          rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestsPerSecond),
		Poller: &OperationPoller{
			Tokens:      tokens,
			HTTPClient:  httpClient,
			Endpoint:    cfg.VideoEndpoint,
			Interval:    time.Duration(cfg.PollIntervalSeconds) * time.Second,
			MaxAttempts: cfg.PollMaxAttempts,
		},
	}
}

// AnnotateVideo submits media bytes for video intelligence analysis and
// returns the raw annotation payload. Synchronous responses are returned
// directly; responses carrying an operation `name` are polled to completion.
func (c *AnalysisClient) AnnotateVideo(ctx context.Context, media []byte) (json.RawMessage, error) {
	request := map[string]interface{}{
		"inputContent": base64.StdEncoding.EncodeToString(media),
		"features":     DefaultVideoFeatures,
		"videoContext": map[string]interface{}{
			"speechTranscriptionConfig": map[string]interface{}{
				"languageCode": "en-US",
			},
		},
	}

	body, err := c.postJSON(ctx, c.VideoEndpoint+"/v1/videos:annotate", request)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Name string `json:"name"`
	}
	// An undecodable 2xx body is passed through untouched: the normalizer
	// owns the decision of whether it is usable.
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Name != "" {
		return c.Poller.PollUntilDone(ctx, envelope.Name)
	}
	return body, nil
}

// Transcribe submits audio bytes for speech recognition and returns the
// concatenated transcript. An empty transcript is a valid result.
func (c *AnalysisClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	request := map[string]interface{}{
		"audio": map[string]interface{}{
			"content": base64.StdEncoding.EncodeToString(audio),
		},
		"config": map[string]interface{}{
			"encoding":                   "LINEAR16",
			"sampleRateHertz":            16000,
			"languageCode":               "en-US",
			"enableAutomaticPunctuation": true,
		},
	}

	body, err := c.postJSON(ctx, c.SpeechEndpoint+"/v1/speech:recognize", request)
	if err != nil {
		return "", err
	}

	var parsed struct {
		Results []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &RemoteAPIError{StatusCode: http.StatusOK, Message: "undecodable speech response"}
	}

	var transcript strings.Builder
	for _, result := range parsed.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if transcript.Len() > 0 {
			transcript.WriteString(" ")
		}
		transcript.WriteString(result.Alternatives[0].Transcript)
	}
	return transcript.String(), nil
}

// AnalyzeSentiment runs document-level sentiment analysis over the text.
func (c *AnalysisClient) AnalyzeSentiment(ctx context.Context, text string) (model.SentimentScore, error) {
	body, err := c.postJSON(ctx, c.LanguageEndpoint+"/v1/documents:analyzeSentiment", plainTextDocumentRequest(text))
	if err != nil {
		return model.SentimentScore{}, err
	}

	var parsed struct {
		DocumentSentiment struct {
			Score     float64 `json:"score"`
			Magnitude float64 `json:"magnitude"`
		} `json:"documentSentiment"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.SentimentScore{}, &RemoteAPIError{StatusCode: http.StatusOK, Message: "undecodable sentiment response"}
	}
	return model.SentimentScore{
		Score:     parsed.DocumentSentiment.Score,
		Magnitude: parsed.DocumentSentiment.Magnitude,
	}, nil
}

// AnalyzeEntities extracts named entities from the text.
func (c *AnalysisClient) AnalyzeEntities(ctx context.Context, text string) ([]*model.Entity, error) {
	body, err := c.postJSON(ctx, c.LanguageEndpoint+"/v1/documents:analyzeEntities", plainTextDocumentRequest(text))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Entities []struct {
			Name     string  `json:"name"`
			Type     string  `json:"type"`
			Salience float64 `json:"salience"`
		} `json:"entities"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &RemoteAPIError{StatusCode: http.StatusOK, Message: "undecodable entity response"}
	}

	out := make([]*model.Entity, 0, len(parsed.Entities))
	for _, entity := range parsed.Entities {
		out = append(out, &model.Entity{Name: entity.Name, Type: entity.Type, Salience: entity.Salience})
	}
	return out, nil
}

// plainTextDocumentRequest builds the shared request body for the text
// analysis endpoints.
func plainTextDocumentRequest(text string) map[string]interface{} {
	return map[string]interface{}{
		"document": map[string]interface{}{
			"type":    "PLAIN_TEXT",
			"content": text,
		},
		"encodingType": "UTF8",
	}
}

// postJSON performs one authenticated POST, applying the rate limit and the
// shared non-2xx handling.
func (c *AnalysisClient) postJSON(ctx context.Context, url string, request interface{}) (json.RawMessage, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	token, err := c.Tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newRemoteAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// newRemoteAPIError extracts the platform's structured error message when
// present, falling back to "unknown" for unstructured bodies.
func newRemoteAPIError(statusCode int, body []byte) *RemoteAPIError {
	var structured struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Message != "" {
		return &RemoteAPIError{StatusCode: statusCode, Message: structured.Error.Message}
	}
	return &RemoteAPIError{StatusCode: statusCode, Message: "unknown"}
}
