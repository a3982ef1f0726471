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

package media

import (
	"testing"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestExtractClipArgs verifies the seek, duration, and stream-copy flags
// for clip extraction.
func TestExtractClipArgs(t *testing.T) {
	args := extractClipArgs("in.mp4", 4.2, 5.0, "out.mp4")

	assert.Equal(t, []string{
		"-y", "-hide_banner",
		"-ss", "4.200",
		"-t", "5.000",
		"-i", "in.mp4",
		"-c", "copy",
		"-f", "mp4", "out.mp4",
	}, args)
}

// TestComposeClipsArgs verifies the concat demuxer invocation.
func TestComposeClipsArgs(t *testing.T) {
	args := composeClipsArgs("list.txt", "out.mp4")

	assert.Equal(t, []string{
		"-y", "-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", "list.txt",
		"-c", "copy",
		"-f", "mp4", "out.mp4",
	}, args)
}

// TestFilterArgs verifies the eq filter expression for each filter kind.
// Brightness is an absolute delta on a neutral 0.0; contrast and saturation
// are multipliers on a neutral 1.0.
func TestFilterArgs(t *testing.T) {
	brightness := filterArgs("in.mp4", model.FilterParams{Kind: model.FilterBrightness, Amount: 0.1}, "out.mp4")
	assert.Contains(t, brightness, "eq=brightness=0.100")

	contrast := filterArgs("in.mp4", model.FilterParams{Kind: model.FilterContrast, Amount: 0.1}, "out.mp4")
	assert.Contains(t, contrast, "eq=contrast=1.100")

	saturation := filterArgs("in.mp4", model.FilterParams{Kind: model.FilterSaturation, Amount: 0.1}, "out.mp4")
	assert.Contains(t, saturation, "eq=saturation=1.100")
}

// TestSplitGCSURI verifies reference parsing and its failure cases.
func TestSplitGCSURI(t *testing.T) {
	bucket, object, err := splitGCSURI("gs://my-bucket/folder/video.mp4")
	assert.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "folder/video.mp4", object)

	_, _, err = splitGCSURI("https://example.com/video.mp4")
	assert.Error(t, err)

	_, _, err = splitGCSURI("gs://bucket-only")
	assert.Error(t, err)
}
