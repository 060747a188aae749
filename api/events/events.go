// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakingrewards/api/utils"
	"github.com/vechain/stakingrewards/logdb"
	"github.com/vechain/stakingrewards/thor"
)

type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

// FilteredEvent is an indexed event with its call context.
type FilteredEvent struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    string         `json:"data"`
	Meta    EventMeta      `json:"meta"`
}

type EventMeta struct {
	Seq    uint64       `json:"seq"`
	Index  uint32       `json:"index"`
	Time   uint64       `json:"time"`
	Caller thor.Address `json:"caller"`
	Method string       `json:"method"`
}

func convertEvent(ev *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: ev.Address,
		Data:    hexutil.Encode(ev.Data),
		Topics:  make([]thor.Bytes32, 0, len(ev.Topics)),
		Meta: EventMeta{
			Seq:    ev.Seq,
			Index:  ev.Index,
			Time:   ev.Time,
			Caller: ev.Caller,
			Method: ev.Method,
		},
	}
	for _, topic := range ev.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, *topic)
		}
	}
	return fe
}

// parseFilter builds a filter from address, topic0..topic3, caller, from,
// to, order, offset and limit query values.
func (e *Events) parseFilter(q url.Values) (*logdb.EventFilter, error) {
	criteria := &logdb.EventCriteria{}
	hasCriteria := false
	if s := q.Get("address"); s != "" {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "address")
		}
		criteria.Address = addr
		hasCriteria = true
	}
	for i := range criteria.Topics {
		name := fmt.Sprintf("topic%d", i)
		if s := q.Get(name); s != "" {
			topic, err := thor.ParseBytes32(s)
			if err != nil {
				return nil, errors.WithMessage(err, name)
			}
			criteria.Topics[i] = &topic
			hasCriteria = true
		}
	}

	filter := &logdb.EventFilter{Order: logdb.ASC}
	if hasCriteria {
		filter.CriteriaSet = []*logdb.EventCriteria{criteria}
	}
	if s := q.Get("caller"); s != "" {
		caller, err := thor.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "caller")
		}
		filter.Caller = caller
	}

	if q.Get("from") != "" || q.Get("to") != "" {
		from, err := utils.ParseUint64(q.Get("from"), 0)
		if err != nil {
			return nil, errors.WithMessage(err, "from")
		}
		to, err := utils.ParseUint64(q.Get("to"), 0)
		if err != nil {
			return nil, errors.WithMessage(err, "to")
		}
		if q.Get("to") == "" {
			to = math.MaxInt64
		} else if to < from {
			return nil, errors.New("to is before from")
		}
		filter.Range = &logdb.Range{From: from, To: to}
	}

	switch q.Get("order") {
	case "", string(logdb.ASC):
	case string(logdb.DESC):
		filter.Order = logdb.DESC
	default:
		return nil, errors.New("order must be asc or desc")
	}

	offset, err := utils.ParseUint64(q.Get("offset"), 0)
	if err != nil {
		return nil, errors.WithMessage(err, "offset")
	}
	limit, err := utils.ParseUint64(q.Get("limit"), e.limit)
	if err != nil {
		return nil, errors.WithMessage(err, "limit")
	}
	if limit > e.limit {
		return nil, fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit)
	}
	filter.Options = &logdb.Options{Offset: offset, Limit: limit}
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req.URL.Query())
	if err != nil {
		return utils.BadRequest(err)
	}
	events, err := e.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	out := make([]*FilteredEvent, len(events))
	for i, ev := range events {
		out[i] = convertEvent(ev)
	}
	return utils.WriteJSON(w, out)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
