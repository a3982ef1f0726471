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

// Package main contains the logic for setting up and starting the Pub/Sub
// message listeners that initiate backend processing in response to new
// media uploads in Google Cloud Storage.
//
// Functions:
//   - SetupListeners: Initializes and starts the listener for the media
//     upload topic, attaching the analysis pipeline.
package main

import (
	"context"

	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/workflow"
)

// SetupListeners configures and starts the background Pub/Sub listeners.
// It creates the analysis pipeline and attaches it to the media upload
// topic listener.
//
// Inputs:
//   - config: The application's configuration.
//   - cloudClients: A struct containing all the initialized Google Cloud service clients.
//   - ctx: The application's root context, used to manage the listener lifecycle.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	// The full analysis pipeline: parse the notification, download the
	// media, annotate, normalize, enrich, recommend, write the brief, and
	// persist the run. The brief step uses the "editorial-flash" agent model.
	mediaIntel := workflow.NewMediaIntelPipeline(config, cloudClients, "editorial-flash")

	cloudClients.PubSubListeners["MediaUploads"].SetCommand(mediaIntel)
	cloudClients.PubSubListeners["MediaUploads"].Listen(ctx)
}
