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
// analysis platform and Google Cloud services. This file implements a
// decorator around the Generative AI client that adds rate limiting and a
// retry mechanism.
//
// Why this is important:
//   - Rate Limiting: Vertex AI enforces per-minute quotas. The decorator
//     keeps the application inside those limits instead of burning quota on
//     rejected calls.
//   - Retry Logic: Generation requests can fail for transient reasons. The
//     decorator retries a bounded number of times before surfacing the error.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: Wraps a configured model handle with a
//     rate limiter.
//
// Functions:
//   - NewQuotaAwareModel: Constructor for the wrapped model.
//   - GenerateContent: The decorated call that enforces the limiter and
//     retries.
package cloud

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// generateMaxRetries bounds the transient-failure retries inside the
// decorator itself; the helper in utils.go layers its own budget on top.
const generateMaxRetries = 3

// generateRetryPause is the recovery period between failed attempts.
const generateRetryPause = 5 * time.Second

// generateFunc matches the genai model-collection call signature, so tests
// can substitute the backend call.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// QuotaAwareGenerativeAIModel is a decorator that pairs a generation config
// and model handle with a client-side rate limiter. Callers use it exactly
// like the underlying model; the limiter is invisible to them.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // The generation settings applied to every call.
	ModelName               string                       // The Vertex AI model identifier.
	ModelHandle             *genai.Models                // The underlying model collection handle.
	RateLimit               *rate.Limiter                // Controls request frequency across callers.

	// Test seams; nil selects the model handle and the real recovery pause.
	generate generateFunc
	pause    func(ctx context.Context) error
}

// NewQuotaAwareModel creates a new QuotaAwareGenerativeAIModel around a
// configured model.
//
// Inputs:
//   - wrapped: The generation config applied to every request.
//   - name: The Vertex AI model identifier to invoke.
//   - handle: The genai model collection handle issuing the calls.
//   - requestsPerSecond: The maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             handle,
		RateLimit:               rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// GenerateContent invokes the wrapped model, blocking on the rate limiter
// first and retrying transient failures with a short pause between attempts.
//
// Inputs:
//   - ctx: The context for the request; cancels both the limiter wait and
//     the retry pauses.
//   - content: The prompt content (text, inline media, file references).
//
// Outputs:
//   - *genai.GenerateContentResponse: The model's response on success.
//   - error: The final attempt's error once the retry budget is spent.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	call := q.generate
	if call == nil {
		call = q.ModelHandle.GenerateContent
	}
	pause := q.pause
	if pause == nil {
		pause = q.recoveryPause
	}

	var lastErr error
	for attempt := 0; attempt <= generateMaxRetries; attempt++ {
		if err := q.RateLimit.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := call(ctx, q.ModelName, content, q.GenerativeContentConfig)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// The pause runs between attempts only; the final failure goes back
		// to the caller immediately.
		if attempt == generateMaxRetries {
			break
		}
		if err := pause(ctx); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("generation failed after %d retries: %w", generateMaxRetries, lastErr)
}

// recoveryPause waits out the between-attempt recovery period, honoring
// context cancellation.
func (q *QuotaAwareGenerativeAIModel) recoveryPause(ctx context.Context) error {
	timer := time.NewTimer(generateRetryPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
