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

// Package main contains the setup and initialization logic for the application's state.
// This file is responsible for creating and managing a centralized state manager
// that holds all shared dependencies: configuration, Google Cloud service clients,
// the media storage and processing layers, and the media intelligence service.
//
// Functions:
//   - SetupOS: Configures the environment variables that point the configuration
//     loader at the correct TOML files.
//   - GetConfig: A singleton accessor for the application configuration.
//   - InitState: Creates all service clients, wires the media intelligence
//     service, and starts the Pub/Sub listener for the analysis pipeline.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/services"
	"github.com/jaycherian/gcp-go-media-intel/internal/media"
)

// StateManager holds all the shared dependencies for the application, acting
// as a centralized container for service clients and configuration. This
// avoids global variables and keeps dependency management in one place.
type StateManager struct {
	config       *cloud.Config
	cloud        *cloud.ServiceClients
	store        *media.GCSStore
	processor    *media.FFmpegProcessor
	intelService *services.MediaIntelService
}

// state is a package-level variable holding the single StateManager instance.
var state = &StateManager{}

// SetupOS sets the environment variables the configuration loader uses to
// find the correct TOML files: the config directory prefix and the runtime
// environment name, which selects the override file (e.g. ".env.local.toml").
//
// Outputs:
//   - error: An error if setting any of the environment variables fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig provides a singleton instance of the application configuration,
// loading it from the TOML files on first call and caching it afterwards.
//
// Outputs:
//   - *cloud.Config: A pointer to the loaded application configuration struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState initializes the entire application state.
//
// Inputs:
//   - ctx: The root context.Context for the application, managing the
//     lifecycle of client connections and background processes.
//
// This function performs the following steps:
//  1. Loads the application configuration.
//  2. Initializes the Google Cloud service clients and the analysis client.
//  3. Builds the media storage layer (GCS) and the FFmpeg processor over it.
//  4. Wires the MediaIntelService facade the API routes talk to.
//  5. Starts the Pub/Sub listener that drives the analysis pipeline.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	// Reads resolve full gs:// references from any bucket; only uploads use
	// the store's bound bucket, so binding to the render bucket routes every
	// processor output there.
	state.store = media.NewGCSStore(
		cloudClients.StorageClient,
		cloudClients.IAMClient,
		config.Storage.RenderBucket,
		config.Application.SignerServiceAccountEmail)
	state.processor = media.NewFFmpegProcessor("", state.store, "renders")

	state.intelService = services.NewMediaIntelService(
		cloudClients.Analysis,
		state.store,
		state.processor,
		cloudClients.BigQueryClient,
		config.BigQueryDataSource.DatasetName,
		config.BigQueryDataSource.AnalysisTable)

	// Configure and start the Pub/Sub listener that reacts to GCS events.
	SetupListeners(config, cloudClients, ctx)
}
