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

// Package store is the Persistence Layer: a single embedded SQLite file
// plus typed CRUD operations. It is the only code in the repository that
// touches entity rows directly -- the orchestrator and scorers hold only
// transient copies.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Store wraps the embedded database connection pool.
type Store struct {
	Path string
	DB   *sql.DB
}

func openSQL(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path))
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer; cap the pool so concurrent workers queue
	// on the driver rather than failing with "database is locked".
	db.SetMaxOpenConns(1)
	return db, nil
}

// Open connects to the embedded file at path, running migrations first.
func Open(path string) (*Store, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}
	db, err := openSQL(path)
	if err != nil {
		return nil, err
	}
	log.Info().Str("Path", path).Msg("opened embedded store")
	return &Store{Path: path, DB: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}
