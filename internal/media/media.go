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

// Package media defines the external collaborator boundary for media
// storage and manipulation. The intelligence core never touches bytes on
// disk or codecs directly; it speaks to these two interfaces and lets the
// concrete implementations (GCS storage, ffmpeg processing) do the work.
//
// Interfaces:
//   - Store: upload, fetch, and delete media objects, plus signed URL
//     generation for browser playback.
//   - Processor: clip extraction, composition, and filter application.
package media

import (
	"context"

	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
)

// Store is the object-storage boundary. Paths are bucket-relative object
// names; URLs are opaque references a later call can resolve.
type Store interface {
	// UploadBytes writes data to the given path and returns a reference URL.
	UploadBytes(ctx context.Context, data []byte, path string) (string, error)

	// FetchBytes reads back the object behind a reference URL.
	FetchBytes(ctx context.Context, url string) ([]byte, error)

	// DeleteFile removes the object behind a reference URL.
	DeleteFile(ctx context.Context, url string) error

	// SignedURL produces a time-limited browser-accessible URL for an object.
	SignedURL(ctx context.Context, url string) (string, error)
}

// Clip is an opaque handle to an extracted clip, produced and consumed by a
// Processor.
type Clip struct {
	Path string // Local or storage path of the clip media.
}

// Processor is the media-manipulation boundary. Implementations are
// synchronous; callers wrap them in their own concurrency.
type Processor interface {
	// ExtractClip cuts `duration` seconds starting at `start` out of the
	// source reference.
	ExtractClip(ctx context.Context, source string, start float64, duration float64) (Clip, error)

	// ComposeClips concatenates the ordered clips into one output and
	// returns its reference.
	ComposeClips(ctx context.Context, clips []Clip) (string, error)

	// ApplyFilter applies one visual adjustment to the media reference and
	// returns the resulting reference.
	ApplyFilter(ctx context.Context, mediaRef string, filter model.FilterParams) (string, error)
}
