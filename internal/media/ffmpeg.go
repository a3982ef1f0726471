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
// storage and manipulation. This file implements the Processor interface on
// the FFmpeg command-line tool.
//
// Logic Flow (per operation):
//  1. Resolve the source reference to local bytes through the Store and
//     stage them in a temporary file (FFmpeg wants real paths, not
//     readers).
//  2. Build the FFmpeg argument list for the operation: `-ss/-t` for clip
//     extraction, the concat demuxer for composition, `-vf eq=...` for
//     filters.
//  3. Run FFmpeg under the caller's context so cancellation kills the
//     process.
//  4. Upload the output back through the Store and return its reference.
//
// Argument building is split into pure helpers so the flag layout is unit
// testable without invoking FFmpeg.
package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-media-intel/internal/core/model"
)

// DefaultFFmpegCommand is used when no explicit executable path is
// configured. It assumes `ffmpeg` is available on the system PATH.
const DefaultFFmpegCommand = "ffmpeg"

const tempFilePrefix = "media-intel-"

// FFmpegProcessor implements Processor by shelling out to FFmpeg, staging
// inputs and outputs through the Store.
type FFmpegProcessor struct {
	CommandPath string // Path to the FFmpeg executable.
	Store       Store  // Resolves references to bytes and back.
	OutputDir   string // Object-path prefix for rendered outputs.
}

// NewFFmpegProcessor builds a processor. An empty commandPath falls back to
// the PATH lookup default.
func NewFFmpegProcessor(commandPath string, store Store, outputDir string) *FFmpegProcessor {
	if len(strings.TrimSpace(commandPath)) == 0 {
		commandPath = DefaultFFmpegCommand
	}
	return &FFmpegProcessor{CommandPath: commandPath, Store: store, OutputDir: outputDir}
}

// extractClipArgs builds the FFmpeg argument list for cutting `duration`
// seconds starting at `start` out of the input, with a stream copy to avoid
// a re-encode.
func extractClipArgs(input string, start float64, duration float64, output string) []string {
	return []string{
		"-y", "-hide_banner",
		"-ss", fmt.Sprintf("%.3f", start),
		"-t", fmt.Sprintf("%.3f", duration),
		"-i", input,
		"-c", "copy",
		"-f", "mp4", output,
	}
}

// composeClipsArgs builds the FFmpeg argument list for concatenating the
// clips listed in the concat manifest file.
func composeClipsArgs(manifest string, output string) []string {
	return []string{
		"-y", "-hide_banner",
		"-f", "concat",
		"-safe", "0",
		"-i", manifest,
		"-c", "copy",
		"-f", "mp4", output,
	}
}

// filterArgs builds the FFmpeg argument list for one visual adjustment via
// the eq filter. The filter amount is a relative delta on the neutral value.
func filterArgs(input string, filter model.FilterParams, output string) []string {
	var expr string
	switch filter.Kind {
	case model.FilterBrightness:
		expr = fmt.Sprintf("eq=brightness=%.3f", filter.Amount)
	case model.FilterContrast:
		expr = fmt.Sprintf("eq=contrast=%.3f", 1.0+filter.Amount)
	case model.FilterSaturation:
		expr = fmt.Sprintf("eq=saturation=%.3f", 1.0+filter.Amount)
	default:
		expr = "eq=brightness=0.0"
	}
	return []string{
		"-y", "-hide_banner",
		"-i", input,
		"-vf", expr,
		"-f", "mp4", output,
	}
}

// ExtractClip cuts a clip out of the source reference and returns a handle
// to the local clip file.
func (p *FFmpegProcessor) ExtractClip(ctx context.Context, source string, start float64, duration float64) (Clip, error) {
	input, cleanup, err := p.stage(ctx, source)
	if err != nil {
		return Clip{}, err
	}
	defer cleanup()

	output, err := tempMediaPath()
	if err != nil {
		return Clip{}, err
	}

	if err := p.run(ctx, extractClipArgs(input, start, duration, output)); err != nil {
		_ = os.Remove(output)
		return Clip{}, err
	}
	return Clip{Path: output}, nil
}

// ComposeClips concatenates the ordered clips into one output, uploads it,
// and returns its reference. The local clip files are removed afterwards.
func (p *FFmpegProcessor) ComposeClips(ctx context.Context, clips []Clip) (string, error) {
	if len(clips) == 0 {
		return "", fmt.Errorf("no clips to compose")
	}

	// The concat demuxer reads its inputs from a manifest file.
	var manifest strings.Builder
	for _, clip := range clips {
		manifest.WriteString(fmt.Sprintf("file '%s'\n", clip.Path))
	}
	manifestFile, err := os.CreateTemp("", tempFilePrefix+"concat-")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(manifestFile.Name()) }()
	if _, err := manifestFile.WriteString(manifest.String()); err != nil {
		_ = manifestFile.Close()
		return "", err
	}
	_ = manifestFile.Close()

	output, err := tempMediaPath()
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(output) }()

	if err := p.run(ctx, composeClipsArgs(manifestFile.Name(), output)); err != nil {
		return "", err
	}

	for _, clip := range clips {
		_ = os.Remove(clip.Path)
	}
	return p.publish(ctx, output)
}

// ApplyFilter applies one visual adjustment to the media reference and
// returns the reference of the filtered output.
func (p *FFmpegProcessor) ApplyFilter(ctx context.Context, mediaRef string, filter model.FilterParams) (string, error) {
	input, cleanup, err := p.stage(ctx, mediaRef)
	if err != nil {
		return "", err
	}
	defer cleanup()

	output, err := tempMediaPath()
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(output) }()

	if err := p.run(ctx, filterArgs(input, filter, output)); err != nil {
		return "", err
	}
	return p.publish(ctx, output)
}

// stage downloads a reference into a local temp file and returns its path
// plus a cleanup function.
func (p *FFmpegProcessor) stage(ctx context.Context, ref string) (string, func(), error) {
	data, err := p.Store.FetchBytes(ctx, ref)
	if err != nil {
		return "", nil, err
	}
	file, err := os.CreateTemp("", tempFilePrefix+"input-*.mp4")
	if err != nil {
		return "", nil, err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", nil, err
	}
	_ = file.Close()
	return file.Name(), func() { _ = os.Remove(file.Name()) }, nil
}

// publish uploads a rendered local file and returns its storage reference.
func (p *FFmpegProcessor) publish(ctx context.Context, localPath string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}
	objectPath := fmt.Sprintf("%s/%s.mp4", strings.TrimSuffix(p.OutputDir, "/"), uuid.NewString())
	return p.Store.UploadBytes(ctx, data, objectPath)
}

// run executes FFmpeg under the caller's context.
func (p *FFmpegProcessor) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, p.CommandPath, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("error running ffmpeg: %w", err)
	}
	return nil
}

// tempMediaPath reserves a temp file path with an mp4 extension for FFmpeg
// output.
func tempMediaPath() (string, error) {
	file, err := os.CreateTemp("", tempFilePrefix+"output-*.mp4")
	if err != nil {
		return "", err
	}
	_ = file.Close()
	return file.Name(), nil
}
