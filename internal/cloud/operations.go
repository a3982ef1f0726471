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
// analysis platform. This file implements the operation poller for
// long-running video annotations.
//
// Logic Flow:
//  1. Issue an authenticated GET for the operation resource.
//  2. If the operation reports done with an error payload, surface it as a
//     *RemoteAPIError. If it reports done with a response, return the raw
//     response for the normalizer.
//  3. Otherwise sleep one interval and try again, up to the attempt budget.
//     The sleep is cancellable; context cancellation wins over the timer.
//  4. An exhausted budget yields a *TimeoutError. The remote operation may
//     still finish server-side, but this client abandons it.
//
// The interval and budget are fixed at construction. There is no backoff:
// operation status reads are cheap, and a predictable worst-case latency
// (interval times attempts) matters more here than politeness to the
// metadata endpoint.
package cloud

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// Default poll cadence used when the configuration leaves the fields zero.
const (
	DefaultPollInterval    = 1 * time.Second
	DefaultPollMaxAttempts = 10
)

// OperationPoller drives a long-running operation to completion with a
// bounded number of fixed-interval status reads.
type OperationPoller struct {
	Tokens      TokenSource
	HTTPClient  *http.Client
	Endpoint    string        // Base URL of the service hosting the operation.
	Interval    time.Duration // Delay between status reads. Zero means the default.
	MaxAttempts int           // Poll budget. Zero means the default.
}

// operationStatus is the wire shape of an operation resource read.
type operationStatus struct {
	Name  string `json:"name"`
	Done  bool   `json:"done"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Response json.RawMessage `json:"response"`
}

// PollUntilDone reads the operation's status until it completes or the
// attempt budget runs out.
//
// Inputs:
//   - ctx: Cancels the poll loop, including mid-sleep.
//   - name: The operation resource name returned by the annotate call.
//
// Outputs:
//   - json.RawMessage: The operation's response payload on success.
//   - error: A *RemoteAPIError for failed operations or failed status reads,
//     a *TimeoutError when the budget is exhausted, or the context's error.
func (p *OperationPoller) PollUntilDone(ctx context.Context, name string) (json.RawMessage, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		status, err := p.readStatus(ctx, name)
		if err != nil {
			return nil, err
		}
		if status.Done {
			if status.Error != nil {
				return nil, &RemoteAPIError{StatusCode: status.Error.Code, Message: status.Error.Message}
			}
			return status.Response, nil
		}

		// Sleep before the next read unless this was the final attempt.
		if attempt == maxAttempts-1 {
			break
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, &TimeoutError{OperationID: name, Attempts: maxAttempts}
}

// readStatus performs one authenticated GET of the operation resource.
func (p *OperationPoller) readStatus(ctx context.Context, name string) (*operationStatus, error) {
	token, err := p.Tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint+"/v1/operations/"+name, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.HTTPClient.Do(req)
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

	status := &operationStatus{}
	if err := json.Unmarshal(body, status); err != nil {
		return nil, &RemoteAPIError{StatusCode: resp.StatusCode, Message: "undecodable operation status"}
	}
	return status, nil
}
