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
// command that loads a GCS object's content into memory for the remote
// analysis calls, which take the media as request bytes rather than a
// storage reference.
//
// Logic Flow:
//  1. Receives a `cloud.GCSObject` from the context.
//  2. Streams the object's content into memory through a GCS reader.
//  3. Sniffs the leading bytes with the filetype library and rejects
//     anything that is not video or audio. Bucket notifications fire for
//     every upload, including thumbnails and sidecar files, and sending
//     those to the annotation service wastes a quota slot on a guaranteed
//     error.
//  4. Places the raw bytes into the context for the annotation command.
package commands

import (
	"fmt"
	"io"
	"log"

	"cloud.google.com/go/storage"
	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
)

// GCSToMediaBytes downloads a GCS object into memory and validates that it
// is actually media before the pipeline spends an analysis call on it.
type GCSToMediaBytes struct {
	cor.BaseCommand
	client *storage.Client // The GCS client for interacting with the storage service.
}

// NewGCSToMediaBytes is the constructor for the download command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - client: An initialized *storage.Client for communicating with GCS.
//
// Outputs:
//   - *GCSToMediaBytes: A pointer to the newly instantiated command.
func NewGCSToMediaBytes(name string, client *storage.Client) *GCSToMediaBytes {
	return &GCSToMediaBytes{BaseCommand: *cor.NewBaseCommand(name), client: client}
}

// Execute contains the core logic for downloading and validating the object.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *GCSToMediaBytes) Execute(context cor.Context) {
	msg := context.Get(c.GetInputParam()).(*cloud.GCSObject)

	reader, err := c.client.Bucket(msg.Bucket).Object(msg.Name).NewReader(context.GetContext())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create GCS reader for gs://%s/%s: %w", msg.Bucket, msg.Name, err))
		return
	}
	defer func(reader *storage.Reader) {
		if err := reader.Close(); err != nil {
			log.Printf("failed to close GCS reader: %v\n", err)
		}
	}(reader)

	data, err := io.ReadAll(reader)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to read gs://%s/%s: %w", msg.Bucket, msg.Name, err))
		return
	}

	// Content sniffing beats trusting the notification's contentType field,
	// which is client-supplied at upload time.
	if !filetype.IsVideo(data) && !filetype.IsAudio(data) {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("gs://%s/%s is not a media file", msg.Bucket, msg.Name))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	log.Printf("Loaded gs://%s/%s (%d bytes) for analysis", msg.Bucket, msg.Name, len(data))
	context.Add(c.GetOutputParam(), data)
}
