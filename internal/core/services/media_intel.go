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

// Package services contains the business logic for interacting with data
// sources. This file defines the MediaIntelService, the synchronous facade
// the API layer talks to. It bundles on-demand analysis, edit
// recommendation, free-text edit interpretation, analysis-record lookup in
// BigQuery, and signed-URL generation for streaming results back to a
// browser.
//
// The asynchronous path (Pub/Sub triggered workflows) reuses the same
// underlying clients but runs through the workflow package instead.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/interpret"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/normalize"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/suggest"
	"github.com/jaycherian/gcp-go-media-intel/internal/media"
	"google.golang.org/api/iterator"
)

// MediaIntelService exposes the media intelligence operations to the API
// layer. It implements interpret.Analyzer so the command interpreter can
// run a fresh analysis pass when an instruction needs one.
type MediaIntelService struct {
	Analysis       *cloud.AnalysisClient // Client for the remote analysis services.
	Store          media.Store           // Media storage for fetch and signed-URL access.
	Engine         *suggest.Engine       // The rule-based recommendation engine.
	Interpreter    *interpret.Interpreter
	BigqueryClient *bigquery.Client // Client for analysis-record lookups.
	DatasetName    string           // The name of the BigQuery dataset.
	AnalysisTable  string           // The table holding persisted analysis runs.
}

// NewMediaIntelService wires the facade from its collaborators. The
// interpreter is built here so its analyzer is the service itself, keeping
// one analysis path for both entry points.
func NewMediaIntelService(
	analysis *cloud.AnalysisClient,
	store media.Store,
	processor media.Processor,
	bigqueryClient *bigquery.Client,
	datasetName string,
	analysisTable string) *MediaIntelService {

	s := &MediaIntelService{
		Analysis:       analysis,
		Store:          store,
		Engine:         suggest.NewEngine(analysis, nil),
		BigqueryClient: bigqueryClient,
		DatasetName:    datasetName,
		AnalysisTable:  analysisTable,
	}
	s.Interpreter = interpret.NewInterpreter(s, processor, nil)
	return s
}

// GetFQN (Get Fully Qualified Name) returns the complete, queryable name
// for the analysis table in BigQuery, formatted with dots instead of colons.
func (s *MediaIntelService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.AnalysisTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// Analyze runs a full analysis pass over a stored media reference: fetch
// the bytes, annotate them, normalize the payload, and attach entities
// from the transcript when one exists. Entity extraction is additive, so
// its failure is logged rather than surfaced.
//
// Inputs:
//   - ctx: The context for the request.
//   - mediaRef: A gs:// URI identifying the asset.
//
// Outputs:
//   - *model.AnalysisResult: The normalized analysis.
//   - error: An error when fetch, annotation, or normalization fails.
func (s *MediaIntelService) Analyze(ctx context.Context, mediaRef string) (*model.AnalysisResult, error) {
	data, err := s.Store.FetchBytes(ctx, mediaRef)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", mediaRef, err)
	}

	raw, err := s.Analysis.AnnotateVideo(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("annotation failed for %s: %w", mediaRef, err)
	}

	result, err := normalize.Parse(raw)
	if err != nil {
		return nil, err
	}

	if result.Transcript != "" {
		entities, err := s.Analysis.AnalyzeEntities(ctx, result.Transcript)
		if err != nil {
			slog.WarnContext(ctx, "entity extraction failed, continuing without entities", "media", mediaRef, "error", err)
		} else {
			result.Entities = entities
		}
	}
	return result, nil
}

// Recommend analyzes the media and runs the recommendation rules over the
// result. The returned list is in rule evaluation order and never empty.
func (s *MediaIntelService) Recommend(ctx context.Context, mediaRef string) ([]model.EditSuggestion, error) {
	analysis, err := s.Analyze(ctx, mediaRef)
	if err != nil {
		return nil, err
	}
	return s.Engine.Recommend(ctx, analysis), nil
}

// Edit interprets a free-text instruction against the media reference and
// returns the reference of the edited output. Unrecognized instructions
// return the input unchanged.
func (s *MediaIntelService) Edit(ctx context.Context, command string, mediaRef string) (string, error) {
	return s.Interpreter.Interpret(ctx, command, mediaRef)
}

// GetRecord retrieves a single persisted analysis run by its UUID.
func (s *MediaIntelService) GetRecord(ctx context.Context, id string) (record *model.MediaIntelRecord, err error) {
	queryText := fmt.Sprintf(QryFindRecordById, s.GetFQN(), id)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return record, err
	}
	record = &model.MediaIntelRecord{}
	err = itr.Next(record)
	return record, err
}

// ListRecords retrieves the most recent analysis runs for a media asset.
func (s *MediaIntelService) ListRecords(ctx context.Context, mediaUri string, limit int) ([]*model.MediaIntelRecord, error) {
	queryText := fmt.Sprintf(QryFindRecordsByMediaUri, s.GetFQN(), mediaUri, limit)
	q := s.BigqueryClient.Query(queryText)
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]*model.MediaIntelRecord, 0)
	for {
		record := &model.MediaIntelRecord{}
		err := itr.Next(record)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// GenerateSignedURL creates a time-limited URL for streaming a stored
// media object, so browsers can play results without GCP credentials.
func (s *MediaIntelService) GenerateSignedURL(ctx context.Context, mediaRef string) (string, error) {
	return s.Store.SignedURL(ctx, mediaRef)
}
