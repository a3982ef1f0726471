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
// analysis platform and Google Cloud services. This file is responsible for
// initializing and holding all the client objects the application needs to
// communicate with external services. It acts as a dependency injection
// container, creating a single shared `ServiceClients` struct that is passed
// throughout the application.
//
// Logic Flow:
//  1. `NewCloudServiceClients` is called at application startup with the
//     loaded configuration.
//  2. It loads the service-account identity and builds the token manager and
//     the analysis client on top of it.
//  3. It initializes clients for Storage, Pub/Sub, GenAI, BigQuery, and IAM
//     credentials.
//  4. It reads the configuration to create Pub/Sub listeners and the
//     quota-aware agent models, storing them in maps.
//  5. All initialized clients are bundled into a single `ServiceClients`
//     struct used by the workflows and the API layer.
//
// Structs:
//   - ServiceClients: A container holding every initialized external client.
//
// Functions:
//   - Close: A convenience method to gracefully shut down client connections.
//   - NewCloudServiceClients: The factory that builds the container.
package cloud

import (
	"context"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// ServiceClients is a central container for all the clients that interact
// with external services. This pattern is a form of dependency injection,
// making it easy to manage and share these connections across the
// application.
type ServiceClients struct {
	Account         *ServiceAccount                         // The loaded service-account identity.
	Tokens          *TokenManager                           // The bearer-token cache for the analysis endpoints.
	Analysis        *AnalysisClient                         // Client for the media analysis platform.
	StorageClient   *storage.Client                         // Client for Google Cloud Storage (GCS).
	PubsubClient    *pubsub.Client                          // Client for Google Cloud Pub/Sub.
	GenAIClient     *genai.Client                           // Client for Google's Generative AI services (Vertex AI).
	BigQueryClient  *bigquery.Client                        // Client for Google Cloud BigQuery.
	IAMClient       *credentials.IamCredentialsClient       // Client for IAM to sign things like GCS URLs.
	PubSubListeners map[string]*PubSubListener              // Active Pub/Sub listeners, keyed by logical name from the config.
	AgentModels     map[string]*QuotaAwareGenerativeAIModel // Configured GenAI agent models, keyed by logical name.
}

// Close is a utility method to gracefully shut down all the active client
// connections. Client lifetimes are normally tied to the root context, but
// tests and controlled shutdowns want an explicit release.
func (c *ServiceClients) Close() {
	_ = c.StorageClient.Close()
	_ = c.PubsubClient.Close()
	_ = c.BigQueryClient.Close()
	if c.IAMClient != nil {
		_ = c.IAMClient.Close()
	}
}

// NewCloudServiceClients is a factory function that initializes all required
// external clients based on the provided configuration. It is the main entry
// point for setting up the application's external dependencies.
//
// Inputs:
//   - ctx: The root context.Context, which manages the client lifecycles.
//   - config: A pointer to the loaded application configuration.
//
// Outputs:
//   - *ServiceClients: A pointer to the fully initialized container.
//   - error: An error if any of the clients fail to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	// Load the service-account secret and build the authentication chain:
	// credentials feed the token manager, the token manager feeds the
	// analysis client.
	account, err := LoadServiceAccount(config.Auth.CredentialsFile)
	if err != nil {
		return nil, err
	}
	tokens := NewTokenManager(account, config.Auth.TokenURL)
	analysis := NewAnalysisClient(tokens, &config.Analysis)

	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, err
	}

	bc, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	ic, err := credentials.NewIamCredentialsClient(ctx)
	if err != nil {
		return nil, err
	}

	// Create a PubSubListener for each configured subscription. The command
	// is initially nil; workflows attach theirs when they are assembled.
	subscriptions := make(map[string]*PubSubListener)
	for subKey := range config.TopicSubscriptions {
		values := config.TopicSubscriptions[subKey]
		actual, err := NewPubSubListener(pc, values.Name, nil)
		if err != nil {
			return nil, err
		}
		subscriptions[subKey] = actual
	}

	// Build each configured agent model, apply its generation settings, and
	// wrap it in the rate-limiting decorator.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey := range config.AgentModels {
		values := config.AgentModels[amKey]
		model := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
			Tools:             []*genai.Tool{},
		}
		agentModels[amKey] = NewQuotaAwareModel(model, values.Model, gc.Models, values.RateLimit)
	}

	cloud = &ServiceClients{
		Account:         account,
		Tokens:          tokens,
		Analysis:        analysis,
		StorageClient:   sc,
		PubsubClient:    pc,
		GenAIClient:     gc,
		BigQueryClient:  bc,
		IAMClient:       ic,
		PubSubListeners: subscriptions,
		AgentModels:     agentModels,
	}

	return cloud, err
}
