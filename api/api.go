// Copyright (c) 2025 The Fantom-CrossChain-Bridge developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"

	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/api/accounts"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/api/events"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/api/stakers"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/api/subscriptions"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/logdb"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/metrics"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/staking"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/storage"
	"github.com/Fantom-foundation/Fantom-CrossChain-Bridge/tokenpool"
)

type Options struct {
	AllowedOrigins string
	EnableMetrics  bool
	LogsLimit      uint64
	// Faucet, when non-zero, enables the on-demand dev faucet with this
	// per-request grant.
	Faucet *uint256.Int
}

// New assembles the http handler over the staking ledger. The returned
// subscriptions module must be registered as the ledger's weight
// subscriber to make the websocket feed live.
func New(
	ledger *staking.Staking,
	pool *tokenpool.Pool,
	store *storage.Store,
	logDB *logdb.LogDB,
	opts Options,
) (http.HandlerFunc, *subscriptions.Subscriptions) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	// all endpoints over the store share one lock: writes hold it
	// exclusively, reads hold it shared, so a read never observes a
	// half-journaled operation
	storeLock := new(sync.RWMutex)

	stakers.New(ledger, storeLock).
		Mount(router, "/stakers")
	accounts.New(pool, store, opts.Faucet, storeLock).
		Mount(router, "/accounts")
	if logDB != nil {
		events.New(logDB, opts.LogsLimit).
			Mount(router, "/events")
	}
	subs := subscriptions.New()
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Path("/metrics").Handler(metrics.HTTPHandler())
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)
	return handler.ServeHTTP, subs
}
