// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package store

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// APIStatus is the persisted health-check result for one source, written
// by the configuration manager's self_test operation.
type APIStatus struct {
	Source    string    `db:"source" json:"source"`
	Status    string    `db:"status" json:"status"`
	CheckedAt time.Time `db:"checked_at" json:"checked_at"`
	Detail    string    `db:"detail" json:"detail"`
}

// UpsertAPIStatus writes or replaces the latest health-check result for
// a source.
func (s *Store) UpsertAPIStatus(ctx context.Context, st *APIStatus) error {
	_, err := s.DB.ExecContext(ctx, `INSERT INTO api_status (source, status, checked_at, detail)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET status=excluded.status, checked_at=excluded.checked_at, detail=excluded.detail`,
		st.Source, st.Status, st.CheckedAt, st.Detail)
	return err
}

// ListAPIStatus returns the latest health-check result for every source.
func (s *Store) ListAPIStatus(ctx context.Context) ([]APIStatus, error) {
	var rows []APIStatus
	err := sqlscan.Select(ctx, s.DB, &rows, `SELECT * FROM api_status ORDER BY source`)
	return rows, err
}
