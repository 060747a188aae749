// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/api/admin/loglevel"
	"github.com/vechain/stakingrewards/api/utils"
	"github.com/vechain/stakingrewards/runtime"
)

// Health reports the executor head.
type Health struct {
	Healthy  bool   `json:"healthy"`
	Seq      uint64 `json:"seq"`
	LastTime uint64 `json:"lastTime"`
}

// Mount installs the admin endpoints under pathPrefix.
func Mount(root *mux.Router, pathPrefix string, logLevel *slog.LevelVar, exec *runtime.Executor) {
	loglevel.New(logLevel).Mount(root, pathPrefix+"/loglevel")

	root.Path(pathPrefix + "/health").
		Methods(http.MethodGet).
		Name("get-health").
		HandlerFunc(utils.WrapHandlerFunc(func(w http.ResponseWriter, _ *http.Request) error {
			seq, last, err := exec.Head()
			if err != nil {
				return utils.HTTPError(errors.WithMessage(err, "unhealthy"), http.StatusServiceUnavailable)
			}
			return utils.WriteJSON(w, &Health{Healthy: true, Seq: seq, LastTime: last})
		}))
}
