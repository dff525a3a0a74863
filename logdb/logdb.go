// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb persists staking events into sqlite for later querying.
package logdb

import (
	"context"
	"database/sql"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS staking_event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	validator INTEGER NOT NULL,
	staker BLOB,
	amount TEXT,
	time INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS staking_event_validator ON staking_event(validator);
CREATE INDEX IF NOT EXISTS staking_event_time ON staking_event(time);`

// LogDB stores the staking event history.
type LogDB struct {
	path string
	db   *sql.DB
}

// New creates or opens the event db at the given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}
	return &LogDB{path, db}, nil
}

// NewMem creates an event db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close closes the event db.
func (db *LogDB) Close() {
	db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// Record appends one event to the history.
func (db *LogDB) Record(ev *staking.Event) error {
	var amount string
	if ev.Amount != nil {
		amount = ev.Amount.Dec()
	}
	_, err := db.db.Exec(
		"INSERT INTO staking_event(kind, validator, staker, amount, time) VALUES(?,?,?,?,?)",
		string(ev.Kind), uint64(ev.Validator), ev.Staker.Bytes(), amount, ev.Time,
	)
	return errors.Wrap(err, "failed to record staking event")
}

// EventFilter narrows a history query. Zero fields match everything.
type EventFilter struct {
	Kind      staking.EventKind
	Validator validation.ID
	Staker    *common.Address
	FromTime  uint64
	ToTime    uint64 // 0 means unbounded
	Limit     uint64 // 0 means unbounded
}

// Filter returns history entries matching the filter, oldest first.
func (db *LogDB) Filter(ctx context.Context, filter *EventFilter) ([]*staking.Event, error) {
	stmt := "SELECT kind, validator, staker, amount, time FROM staking_event WHERE 1"
	var args []interface{}
	if filter != nil {
		if filter.Kind != "" {
			stmt += " AND kind = ?"
			args = append(args, string(filter.Kind))
		}
		if filter.Validator != 0 {
			stmt += " AND validator = ?"
			args = append(args, uint64(filter.Validator))
		}
		if filter.Staker != nil {
			stmt += " AND staker = ?"
			args = append(args, filter.Staker.Bytes())
		}
		if filter.FromTime != 0 {
			stmt += " AND time >= ?"
			args = append(args, filter.FromTime)
		}
		if filter.ToTime != 0 {
			stmt += " AND time <= ?"
			args = append(args, filter.ToTime)
		}
	}
	stmt += " ORDER BY seq"
	if filter != nil && filter.Limit != 0 {
		stmt += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query staking events")
	}
	defer rows.Close()

	var events []*staking.Event
	for rows.Next() {
		var (
			kind      string
			validator uint64
			staker    []byte
			amount    string
			time      uint64
		)
		if err := rows.Scan(&kind, &validator, &staker, &amount, &time); err != nil {
			return nil, errors.Wrap(err, "failed to scan staking event")
		}
		ev := &staking.Event{
			Kind:      staking.EventKind(kind),
			Validator: validation.ID(validator),
			Staker:    common.BytesToAddress(staker),
			Time:      time,
		}
		if amount != "" {
			v, err := uint256.FromDecimal(amount)
			if err != nil {
				return nil, errors.Wrap(err, "failed to parse event amount")
			}
			ev.Amount = v
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
