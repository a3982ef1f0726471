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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the end-to-end media intelligence workflow: notification in, analyzed
// and recommended edits persisted out.
package workflow

import (
	"text/template"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/commands"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/suggest"
)

// MediaIntelWorkflow orchestrates the full analysis of an uploaded media
// file. It is structured as a Chain of Responsibility (cor.Chain) that
// executes a sequence of commands: trigger parsing, download, remote
// annotation, normalization, entity enrichment, rule-based suggestion,
// generative brief writing, and persistence.
//
// The workflow is triggered by a Pub/Sub message indicating that a new
// media object has been finalized in the source GCS bucket.
type MediaIntelWorkflow struct {
	cor.BaseCommand
	config         *cloud.Config
	analysisClient *cloud.AnalysisClient
	bigqueryClient *bigquery.Client
	genaiModel     *cloud.QuotaAwareGenerativeAIModel
	storageClient  *storage.Client
	briefTemplate  *template.Template
	chain          cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the entire workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (m *MediaIntelWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this
// workflow. Each command is an atomic unit of work; the output of one is
// piped into the next by the chain.
func (m *MediaIntelWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	// Step 1: Parse the incoming Pub/Sub notification (JSON) into a
	// structured GCS object reference.
	out.AddCommand(commands.NewMediaTriggerToGCSObject("media-trigger-to-gcs-object"))

	// Step 2: Download the media object into memory and verify that it is
	// actually audio or video before spending an analysis call on it.
	out.AddCommand(commands.NewGCSToMediaBytes("gcs-to-media-bytes", m.storageClient))

	// Step 3: Submit the media to the video intelligence service. The
	// command handles both synchronous answers and long-running operations.
	out.AddCommand(commands.NewVideoAnnotate("annotate-video", m.analysisClient))

	// Step 4: Normalize the raw annotation payload into the internal
	// AnalysisResult model, dropping malformed entries along the way.
	out.AddCommand(commands.NewAnnotationToStruct("normalize-annotation"))

	// Step 5: Enrich the result with named entities from the transcript.
	// Best effort: a language-service failure does not abort the run.
	out.AddCommand(commands.NewEntityEnricher("enrich-entities", m.analysisClient))

	// Step 6: Run the rule-based recommendation engine. The engine reuses
	// the analysis client for sentiment so the whole pipeline shares one
	// rate limit.
	out.AddCommand(commands.NewSuggestionBuilder("build-suggestions",
		suggest.NewEngine(m.analysisClient, nil)))

	// Step 7: Ask the generative model for a prose editing brief covering
	// the findings and the suggested edits.
	out.AddCommand(commands.NewEditingBriefCreator("generate-editing-brief", m.genaiModel, m.briefTemplate))

	// Step 8: Persist the completed run to BigQuery for later querying.
	out.AddCommand(commands.NewIntelPersistToBigQuery(
		"write-to-bigquery",
		m.bigqueryClient,
		m.config.BigQueryDataSource.DatasetName,
		m.config.BigQueryDataSource.AnalysisTable))

	m.chain = out
}

// NewMediaIntelPipeline is the constructor for the MediaIntelWorkflow. It
// compiles the brief prompt template and initializes the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - agentModelName: The name of the agent model config to use for the brief.
//
// Returns:
//   - A pointer to a newly created and fully initialized MediaIntelWorkflow.
func NewMediaIntelPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *MediaIntelWorkflow {

	briefTemplate, err := template.New("brief-template").Parse(config.PromptTemplates.BriefPrompt)
	if err != nil {
		panic(err) // The app cannot run without a valid brief template.
	}

	pipeline := &MediaIntelWorkflow{
		BaseCommand:    *cor.NewBaseCommand("media-intel-pipeline"),
		config:         config,
		analysisClient: serviceClients.Analysis,
		bigqueryClient: serviceClients.BigQueryClient,
		genaiModel:     serviceClients.AgentModels[agentModelName],
		storageClient:  serviceClients.StorageClient,
		briefTemplate:  briefTemplate,
	}
	pipeline.initializeChain()
	return pipeline
}
