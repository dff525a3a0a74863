// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package events exposes the staking event history over REST.
package events

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/api/restutil"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/logdb"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
)

// Event is the JSON shape of a history entry.
type Event struct {
	Kind      string         `json:"kind"`
	Validator uint64         `json:"validator"`
	Staker    common.Address `json:"staker"`
	Amount    string         `json:"amount,omitempty"`
	Time      uint64         `json:"time"`
}

// Events is the route module for the event history.
type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, limit uint64) *Events {
	return &Events{db: db, limit: limit}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseFilter(req)
	if err != nil {
		return err
	}
	if e.limit != 0 && (filter.Limit == 0 || filter.Limit > e.limit) {
		filter.Limit = e.limit
	}
	found, err := e.db.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	converted := make([]*Event, 0, len(found))
	for _, ev := range found {
		out := &Event{
			Kind:      string(ev.Kind),
			Validator: uint64(ev.Validator),
			Staker:    ev.Staker,
			Time:      ev.Time,
		}
		if ev.Amount != nil {
			out.Amount = ev.Amount.Dec()
		}
		converted = append(converted, out)
	}
	return restutil.WriteJSON(w, converted)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(e.handleFilter))
}

func parseFilter(req *http.Request) (*logdb.EventFilter, error) {
	query := req.URL.Query()
	filter := &logdb.EventFilter{
		Kind: staking.EventKind(query.Get("kind")),
	}
	parse := func(name string, dst *uint64) error {
		raw := query.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, name))
		}
		*dst = v
		return nil
	}
	var validator uint64
	if err := parse("validator", &validator); err != nil {
		return nil, err
	}
	filter.Validator = validation.ID(validator)
	if err := parse("from", &filter.FromTime); err != nil {
		return nil, err
	}
	if err := parse("to", &filter.ToTime); err != nil {
		return nil, err
	}
	if err := parse("limit", &filter.Limit); err != nil {
		return nil, err
	}
	if raw := query.Get("staker"); raw != "" {
		if !common.IsHexAddress(raw) {
			return nil, restutil.BadRequest(errors.New("staker: invalid address"))
		}
		addr := common.HexToAddress(raw)
		filter.Staker = &addr
	}
	return filter, nil
}
