// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// create a table for events
const eventTableSchema = `
create table if not exists event (
	seq integer,
	eventIndex integer,
	time integer,
	caller blob(20),
	method text,
	address blob(20),
	topic0 blob(32),
	topic1 blob(32),
	topic2 blob(32),
	topic3 blob(32),
	data blob,
	primary key (seq, eventIndex)
);

CREATE INDEX if not exists timeIndex on event(time);
CREATE INDEX if not exists callerIndex on event(caller);
CREATE INDEX if not exists addressIndex on event(address);

CREATE INDEX if not exists topicIndex0 on event(topic0);
CREATE INDEX if not exists topicIndex1 on event(topic1);
CREATE INDEX if not exists topicIndex2 on event(topic2);
CREATE INDEX if not exists topicIndex3 on event(topic3);
`
