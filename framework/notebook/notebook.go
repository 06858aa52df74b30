// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package notebook implements the persisted store that gives the
// framework continuity across process invocations: a single SQLite
// file mapping handle paths to yaml snapshots, plus the ordered notice
// list recording events whose handling was deferred.
package notebook

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"
)

var logger = loggo.GetLogger("juju.operator.notebook")

// ErrNoSnapshot describes an error that occurs when no snapshot data
// exists for the requested handle path.
const ErrNoSnapshot = errors.ConstError("no snapshot data found")

const schema = `
CREATE TABLE IF NOT EXISTS snapshot (
	handle TEXT PRIMARY KEY,
	data   BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS notice (
	sequence   INTEGER PRIMARY KEY AUTOINCREMENT,
	event_path TEXT NOT NULL
);
`

// Notebook is a handle-path to snapshot store backed by a single
// SQLite file. It is a single-writer resource: the process holding it
// open owns it for its lifetime. All writes land in one transaction
// that Commit makes durable; writes since the last Commit are
// discarded by Close, so a crash never exposes a partial record.
type Notebook struct {
	path string
	db   *sql.DB
	tx   *sql.Tx
}

// Open opens the notebook at path, creating the file and schema if
// absent, and begins the transaction that collects writes until the
// next Commit.
func Open(path string) (*Notebook, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Annotatef(err, "opening notebook %q", path)
	}
	// A single connection keeps every statement inside the lifetime
	// transaction.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Annotatef(err, "creating notebook schema in %q", path)
	}
	tx, err := db.Begin()
	if err != nil {
		_ = db.Close()
		return nil, errors.Trace(err)
	}
	logger.Debugf("opened notebook %q", path)
	return &Notebook{path: path, db: db, tx: tx}, nil
}

// Save stores data as the snapshot for handlePath, overwriting any
// previous snapshot. Values must be simple-shaped (strings, booleans,
// numbers, and lists/maps thereof); anything else fails to serialize.
func (n *Notebook) Save(handlePath string, data map[string]interface{}) error {
	payload, err := yaml.Marshal(data)
	if err != nil {
		return errors.Annotatef(err, "serializing snapshot for %q", handlePath)
	}
	_, err = n.tx.Exec(
		"INSERT OR REPLACE INTO snapshot (handle, data) VALUES (?, ?)",
		handlePath, payload,
	)
	return errors.Annotatef(err, "saving snapshot for %q", handlePath)
}

// Load returns the snapshot stored for handlePath. The returned error
// satisfies errors.Is against ErrNoSnapshot when none exists.
func (n *Notebook) Load(handlePath string) (map[string]interface{}, error) {
	var payload []byte
	err := n.tx.QueryRow(
		"SELECT data FROM snapshot WHERE handle = ?", handlePath,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf(
			"no snapshot data found for %q object%w", handlePath, errors.Hide(ErrNoSnapshot))
	} else if err != nil {
		return nil, errors.Annotatef(err, "loading snapshot for %q", handlePath)
	}
	var data map[string]interface{}
	if err := yaml.Unmarshal(payload, &data); err != nil {
		return nil, errors.Annotatef(err, "corrupt snapshot for %q", handlePath)
	}
	return data, nil
}

// Drop removes the snapshot stored for handlePath, if any.
func (n *Notebook) Drop(handlePath string) error {
	_, err := n.tx.Exec("DELETE FROM snapshot WHERE handle = ?", handlePath)
	return errors.Annotatef(err, "dropping snapshot for %q", handlePath)
}

// List returns, in lexical order, every stored handle path beginning
// with prefix.
func (n *Notebook) List(prefix string) ([]string, error) {
	rows, err := n.tx.Query("SELECT handle FROM snapshot ORDER BY handle")
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, errors.Trace(err)
		}
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	return paths, errors.Trace(rows.Err())
}

// QueueNotice appends eventPath to the deferral queue.
func (n *Notebook) QueueNotice(eventPath string) error {
	_, err := n.tx.Exec("INSERT INTO notice (event_path) VALUES (?)", eventPath)
	return errors.Annotatef(err, "queuing notice for %q", eventPath)
}

// DropNotice removes any queued notice for eventPath.
func (n *Notebook) DropNotice(eventPath string) error {
	_, err := n.tx.Exec("DELETE FROM notice WHERE event_path = ?", eventPath)
	return errors.Annotatef(err, "dropping notice for %q", eventPath)
}

// Notices returns the queued event paths, oldest first.
func (n *Notebook) Notices() ([]string, error) {
	rows, err := n.tx.Query("SELECT event_path FROM notice ORDER BY sequence")
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, errors.Trace(err)
		}
		paths = append(paths, path)
	}
	return paths, errors.Trace(rows.Err())
}

// Commit makes every write since the last Commit durable and begins a
// new transaction for subsequent writes.
func (n *Notebook) Commit() error {
	if err := n.tx.Commit(); err != nil {
		return errors.Annotatef(err, "committing notebook %q", n.path)
	}
	tx, err := n.db.Begin()
	if err != nil {
		return errors.Trace(err)
	}
	n.tx = tx
	return nil
}

// Close discards uncommitted writes and releases the store. The
// notebook must not be used afterwards.
func (n *Notebook) Close() error {
	if n.tx != nil {
		// Rollback of an empty transaction is harmless.
		_ = n.tx.Rollback()
		n.tx = nil
	}
	return errors.Annotatef(n.db.Close(), "closing notebook %q", n.path)
}
