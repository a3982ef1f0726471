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
// analysis platform. This file defines the error taxonomy shared by the
// credential loader, the token manager, the analysis client, and the
// operation poller.
//
// The taxonomy is deliberately small:
//   - AuthError: credential load, assertion signing, or token exchange
//     failed. Fatal from this package's perspective; no component here
//     retries it.
//   - RemoteAPIError: an analysis endpoint answered with a non-2xx status.
//     Carries the status code and the structured error message when one was
//     present in the body, or "unknown" when the body was unstructured.
//   - TimeoutError: a long-running operation did not report done within the
//     bounded poll budget. The remote operation may still complete
//     server-side; the client abandons it.
//
// Retry and backoff policy belongs to callers. Nothing in this package
// retries a failed network call on its own.
package cloud

import "fmt"

// AuthError wraps any failure on the authentication path: reading or parsing
// the service-account secret, signing the bearer assertion, or exchanging it
// for an access token.
type AuthError struct {
	Op  string // The operation that failed, e.g. "sign-assertion".
	Err error  // The underlying cause, may be nil for protocol-level failures.
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth: %s failed", e.Op)
	}
	return fmt.Sprintf("auth: %s failed: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// RemoteAPIError represents a non-2xx response from any analysis endpoint.
type RemoteAPIError struct {
	StatusCode int    // The HTTP status code of the response.
	Message    string // The structured error message, or "unknown".
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("remote api error: HTTP %d: %s", e.StatusCode, e.Message)
}

// TimeoutError indicates that polling a long-running operation exhausted its
// attempt budget before the operation reported completion.
type TimeoutError struct {
	OperationID string // The opaque id of the abandoned operation.
	Attempts    int    // How many polls were issued before giving up.
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s not done after %d poll attempts", e.OperationID, e.Attempts)
}
