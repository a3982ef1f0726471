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
// storage and manipulation. This file implements the Store interface on
// Google Cloud Storage. References are `gs://bucket/object` URIs, and
// browser playback URLs are produced with V4 signing through the IAM
// Credentials API, so no private key material is needed on the host.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
)

// DefaultSignedURLTTL is how long generated playback URLs stay valid.
const DefaultSignedURLTTL = 15 * time.Minute

// GCSStore implements Store on a single GCS bucket.
type GCSStore struct {
	Client      *storage.Client                   // The GCS client issuing object operations.
	IAMClient   *credentials.IamCredentialsClient // Signs URL payloads via the IAM Credentials API.
	Bucket      string                            // The bucket all relative paths resolve into.
	SignerEmail string                            // The service account that signs playback URLs.
}

// NewGCSStore builds a store bound to one bucket.
func NewGCSStore(client *storage.Client, iamClient *credentials.IamCredentialsClient, bucket string, signerEmail string) *GCSStore {
	return &GCSStore{
		Client:      client,
		IAMClient:   iamClient,
		Bucket:      bucket,
		SignerEmail: signerEmail,
	}
}

// UploadBytes writes data under the given object path and returns its
// gs:// reference.
func (s *GCSStore) UploadBytes(ctx context.Context, data []byte, path string) (string, error) {
	writer := s.Client.Bucket(s.Bucket).Object(path).NewWriter(ctx)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write object %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", path, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.Bucket, path), nil
}

// FetchBytes reads back the object behind a gs:// reference.
func (s *GCSStore) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	bucket, object, err := splitGCSURI(url)
	if err != nil {
		return nil, err
	}
	reader, err := s.Client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", url, err)
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}

// DeleteFile removes the object behind a gs:// reference.
func (s *GCSStore) DeleteFile(ctx context.Context, url string) error {
	bucket, object, err := splitGCSURI(url)
	if err != nil {
		return err
	}
	if err := s.Client.Bucket(bucket).Object(object).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", url, err)
	}
	return nil
}

// SignedURL creates a time-limited URL for streaming a private object, so a
// browser can play it without its own credentials. Signing goes through the
// IAM Credentials API under the configured signer account.
func (s *GCSStore) SignedURL(ctx context.Context, url string) (string, error) {
	bucket, object, err := splitGCSURI(url)
	if err != nil {
		return "", err
	}

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "GET",
		Expires:        time.Now().Add(DefaultSignedURLTTL),
		GoogleAccessID: s.SignerEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			req := &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			}
			resp, err := s.IAMClient.SignBlob(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		},
	}

	signed, err := s.Client.Bucket(bucket).SignedURL(object, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", bucket, object, err)
	}
	return signed, nil
}

// splitGCSURI breaks a gs://bucket/object reference into its components.
func splitGCSURI(url string) (bucket string, object string, err error) {
	const prefix = "gs://"
	if !strings.HasPrefix(url, prefix) {
		return "", "", fmt.Errorf("invalid GCS URI format: %s", url)
	}
	parts := strings.SplitN(strings.TrimPrefix(url, prefix), "/", 2)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI: unable to determine bucket and object from %s", url)
	}
	return parts[0], parts[1], nil
}
