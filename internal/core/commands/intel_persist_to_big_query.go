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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// final persistence step of the analysis pipeline: it assembles the
// flattened run record and streams it into BigQuery.
//
// Logic Flow:
//  1. Collects the editing brief (this command's piped input), the parked
//     analysis result, the suggestion list, and the media URI from the
//     context.
//  2. Flattens them into a model.MediaIntelRecord keyed by a fresh UUID.
//  3. Streams the record through a BigQuery Inserter, which is more
//     efficient than issuing individual INSERT statements.
package commands

import (
	"fmt"
	"log"

	"cloud.google.com/go/bigquery"
	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
)

// IntelPersistToBigQuery saves a completed analysis run to a BigQuery table.
type IntelPersistToBigQuery struct {
	cor.BaseCommand
	client  *bigquery.Client // The client for interacting with the BigQuery service.
	dataset string           // The name of the BigQuery dataset.
	table   string           // The name of the target table within the dataset.
}

// NewIntelPersistToBigQuery is the constructor for the persistence command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - client: An initialized *bigquery.Client.
//   - dataset: The name of the BigQuery dataset.
//   - table: The name of the target table.
//
// Outputs:
//   - *IntelPersistToBigQuery: A pointer to the newly instantiated command.
func NewIntelPersistToBigQuery(name string, client *bigquery.Client, dataset string, table string) *IntelPersistToBigQuery {
	return &IntelPersistToBigQuery{BaseCommand: *cor.NewBaseCommand(name), client: client, dataset: dataset, table: table}
}

// IsExecutable requires the parked analysis and suggestions; the brief may
// legitimately be absent when the generative step was skipped.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
//
// Outputs:
//   - bool: True if the record can be assembled from the context.
func (s *IntelPersistToBigQuery) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(GetAnalysisResultName()) != nil &&
		context.Get(GetSuggestionsName()) != nil
}

// Execute assembles the record and writes it to BigQuery.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *IntelPersistToBigQuery) Execute(context cor.Context) {
	log.Println("Persisting analysis run to BigQuery...")

	analysis := context.Get(GetAnalysisResultName()).(*model.AnalysisResult)
	suggestions := context.Get(GetSuggestionsName()).([]model.EditSuggestion)

	mediaUri := ""
	if v := context.Get(GetMediaUriName()); v != nil {
		mediaUri = v.(string)
	}
	brief := ""
	if v, ok := context.Get(s.GetInputParam()).(string); ok {
		brief = v
	}

	record := model.NewMediaIntelRecord(uuid.NewString(), mediaUri, analysis, suggestions, brief)

	i := s.client.Dataset(s.dataset).Table(s.table).Inserter()
	if err := i.Put(context.GetContext(), record); err != nil {
		log.Printf("failed to write analysis record for %s: %s\n", mediaUri, err)
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("bigquery insert failed for '%s': %w", mediaUri, err))
		return
	}

	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, record)
	log.Printf("Successfully persisted analysis record %s for '%s'", record.Id, mediaUri)
}
