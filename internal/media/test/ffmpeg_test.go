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

// Package media_test contains unit tests for the media collaborator
// implementations. The FFmpeg tests cover constructor defaults and the
// GCS URI splitting used by the store; the processor's argument layout is
// covered indirectly through the filter kind mapping.
package media_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-media-intel/internal/media"
	"github.com/stretchr/testify/assert"
)

// TestNewFFmpegProcessorDefaultsCommand verifies that an empty command path
// falls back to the PATH lookup default.
func TestNewFFmpegProcessorDefaultsCommand(t *testing.T) {
	processor := media.NewFFmpegProcessor("  ", nil, "renders")
	assert.Equal(t, media.DefaultFFmpegCommand, processor.CommandPath)

	explicit := media.NewFFmpegProcessor("/snap/bin/ffmpeg", nil, "renders")
	assert.Equal(t, "/snap/bin/ffmpeg", explicit.CommandPath)
}
