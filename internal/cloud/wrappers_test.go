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

package cloud

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// TestGenerateContentRetriesWithoutTrailingPause verifies the retry loop's
// shape when every attempt fails: the full attempt budget is spent, and the
// recovery pause runs between attempts only, never after the last one.
func TestGenerateContentRetriesWithoutTrailingPause(t *testing.T) {
	calls := 0
	pauses := 0
	m := &QuotaAwareGenerativeAIModel{
		ModelName: "editorial-test",
		RateLimit: rate.NewLimiter(rate.Inf, 1),
		generate: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, errors.New("backend unavailable")
		},
		pause: func(context.Context) error {
			pauses++
			return nil
		},
	}

	_, err := m.GenerateContent(context.Background(), NewTextPart("hello"))
	require.Error(t, err)

	assert.Equal(t, generateMaxRetries+1, calls)
	assert.Equal(t, generateMaxRetries, pauses)
}

// TestGenerateContentReturnsFirstSuccess verifies that a success after a
// transient failure short-circuits the remaining attempts.
func TestGenerateContentReturnsFirstSuccess(t *testing.T) {
	calls := 0
	want := &genai.GenerateContentResponse{}
	m := &QuotaAwareGenerativeAIModel{
		ModelName: "editorial-test",
		RateLimit: rate.NewLimiter(rate.Inf, 1),
		generate: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("transient")
			}
			return want, nil
		},
		pause: func(context.Context) error { return nil },
	}

	resp, err := m.GenerateContent(context.Background(), NewTextPart("hello"))
	require.NoError(t, err)

	assert.Same(t, want, resp)
	assert.Equal(t, 2, calls)
}

// TestGenerateContentStopsOnCancelledPause verifies that a cancelled context
// ends the retry loop during the pause instead of burning more attempts.
func TestGenerateContentStopsOnCancelledPause(t *testing.T) {
	calls := 0
	m := &QuotaAwareGenerativeAIModel{
		ModelName: "editorial-test",
		RateLimit: rate.NewLimiter(rate.Inf, 1),
		generate: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, errors.New("backend unavailable")
		},
		pause: func(context.Context) error { return context.Canceled },
	}

	_, err := m.GenerateContent(context.Background(), NewTextPart("hello"))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
