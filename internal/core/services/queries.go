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

// Package services contains the business logic for interacting with data
// sources. This file holds the SQL query templates used against BigQuery.
// The %s placeholders are filled with the fully qualified table name and
// the query arguments, in order.
package services

// QryFindRecordById fetches a single analysis record by its UUID.
const QryFindRecordById = "SELECT * FROM `%s` WHERE id = \"%s\""

// QryFindRecordsByMediaUri fetches every analysis run recorded for a media
// asset, newest first.
const QryFindRecordsByMediaUri = "SELECT * FROM `%s` WHERE media_uri = \"%s\" ORDER BY create_time DESC LIMIT %d"
