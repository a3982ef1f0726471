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
// analysis platform. This file implements the credential store: the
// service-account identity loaded once at startup from a local secret file
// and owned exclusively by the token manager afterwards.
//
// The secret file is the standard service-account JSON key layout with
// `project_id`, `private_key` (PEM, RSA) and `client_email` fields. A
// missing file, undecodable JSON, or an unparsable key is a fatal
// construction error (*AuthError) — the application cannot authenticate
// without it, so there is nothing sensible to degrade to.
package cloud

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceAccount holds the immutable service-account identity used to build
// signed bearer assertions. The parsed RSA key is kept alongside the raw
// fields so signing never has to re-parse the PEM block.
type ServiceAccount struct {
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`

	key *rsa.PrivateKey
}

// SigningKey returns the parsed RSA private key for assertion signing.
func (s *ServiceAccount) SigningKey() *rsa.PrivateKey {
	return s.key
}

// LoadServiceAccount reads and validates a service-account key file.
//
// Inputs:
//   - path: The filesystem path of the JSON secret file.
//
// Outputs:
//   - *ServiceAccount: The loaded identity with a parsed signing key.
//   - error: An *AuthError if the file is absent, malformed, or incomplete.
func LoadServiceAccount(path string) (*ServiceAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &AuthError{Op: "read-credentials", Err: err}
	}

	account := &ServiceAccount{}
	if err := json.Unmarshal(raw, account); err != nil {
		return nil, &AuthError{Op: "decode-credentials", Err: err}
	}
	if account.ProjectID == "" || account.ClientEmail == "" || account.PrivateKey == "" {
		return nil, &AuthError{
			Op:  "validate-credentials",
			Err: fmt.Errorf("secret file %s is missing project_id, client_email, or private_key", path),
		}
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(account.PrivateKey))
	if err != nil {
		return nil, &AuthError{Op: "parse-private-key", Err: err}
	}
	account.key = key

	return account, nil
}
