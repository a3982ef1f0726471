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
// This file, `base_test.go`, provides the foundational setup for all tests
// in this package through the special `TestMain` function: the shared root
// context, the test configuration, logging, and the package tracer and
// logger. The shared resources are then available to every test file in
// this package.
package workflow_test

import (
	"context"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/telemetry"
	test "github.com/jaycherian/gcp-go-media-intel/internal/testutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

// Shared resources for the test suite, initialized once in TestMain.
var (
	ctx    context.Context // The root context for all tests in the suite.
	config *cloud.Config   // The application configuration for test runs.
)

const tName = "github.com/jaycherian/gcp-go-media-intel/tests/workflow"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

// TestMain runs before any test in this package, setting up the shared state
// every workflow test depends on.
//
// Inputs:
//   - m: A pointer to testing.M, which runs the test suite via m.Run().
func TestMain(m *testing.M) {
	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	config = test.GetConfig()
	// The pipeline needs a parseable brief template; setting it here keeps
	// the tests independent of the config files on disk.
	config.PromptTemplates.BriefPrompt = "Analysis: {{.ANALYSIS_JSON}}\nSuggestions: {{.SUGGESTIONS_JSON}}"

	// Structured logging only. The default no-op tracer and meter providers
	// are enough here: the tests assert chain behavior, not exported spans.
	telemetry.SetupLogging()

	logger.Info("completed test setup")

	os.Exit(m.Run())
}
