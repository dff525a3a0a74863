// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams validator weight changes over websocket.
package subscriptions

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/holiman/uint256"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/api/restutil"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking/validation"
)

// WeightMessage is one weight change pushed to subscribers.
type WeightMessage struct {
	Validator uint64 `json:"validator"`
	Weight    string `json:"weight"`
}

// Subscriptions fans validator weight changes out to websocket clients.
// It implements the weight subscriber interface of the staking ledger.
type Subscriptions struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[chan *WeightMessage]struct{}
}

func New() *Subscriptions {
	return &Subscriptions{
		upgrader: websocket.Upgrader{},
		clients:  make(map[chan *WeightMessage]struct{}),
	}
}

// ValidatorWeightChanged broadcasts the change. Slow clients miss updates
// instead of blocking the ledger.
func (s *Subscriptions) ValidatorWeightChanged(id validation.ID, weight *uint256.Int) {
	msg := &WeightMessage{
		Validator: uint64(id),
		Weight:    weight.Dec(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (s *Subscriptions) subscribe() chan *WeightMessage {
	ch := make(chan *WeightMessage, 64)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *Subscriptions) unsubscribe(ch chan *WeightMessage) {
	s.mu.Lock()
	delete(s.clients, ch)
	s.mu.Unlock()
}

func (s *Subscriptions) handleSubscribeWeights(w http.ResponseWriter, req *http.Request) error {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		// the read loop surfaces client disconnects
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return nil
		case <-req.Context().Done():
			return req.Context().Err()
		case msg := <-ch:
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
	}
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/weights").Methods(http.MethodGet).HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeWeights))
}
