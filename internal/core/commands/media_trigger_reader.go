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
// entry-point command of the analysis pipeline: it converts a raw Pub/Sub
// notification payload into a typed GCS object reference.
//
// Logic Flow:
//  1. The Pub/Sub listener seeds the chain context with the notification
//     body as a string.
//  2. This command unmarshals the body into a GCSPubSubNotification.
//  3. It reduces the notification to the three fields the rest of the
//     pipeline cares about (bucket, object name, content type) and places
//     the resulting GCSObject into the context under both the well-known
//     object key and this command's output parameter.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jaycherian/gcp-go-media-intel/internal/cloud"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/cor"
)

// MediaTriggerToGCSObject parses a GCS finalize notification delivered over
// Pub/Sub into a cloud.GCSObject.
type MediaTriggerToGCSObject struct {
	cor.BaseCommand
}

// NewMediaTriggerToGCSObject is the constructor for the trigger reader.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//
// Outputs:
//   - *MediaTriggerToGCSObject: A pointer to the newly instantiated command.
func NewMediaTriggerToGCSObject(name string) *MediaTriggerToGCSObject {
	return &MediaTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute parses the notification body and emits the typed object reference.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *MediaTriggerToGCSObject) Execute(context cor.Context) {
	raw := context.Get(c.GetInputParam()).(string)

	notification := &cloud.GCSPubSubNotification{}
	if err := json.Unmarshal([]byte(raw), notification); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to parse GCS notification: %w", err))
		return
	}

	obj := &cloud.GCSObject{
		Bucket:   notification.Bucket,
		Name:     notification.Name,
		MIMEType: notification.ContentType,
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	// The object reference is needed again at persistence time, so it is
	// stored under a well-known key in addition to the output parameter.
	context.Add(cloud.GetGCSObjectName(), obj)
	context.Add(GetMediaUriName(), fmt.Sprintf("gs://%s/%s", obj.Bucket, obj.Name))
	context.Add(c.GetOutputParam(), obj)
}
