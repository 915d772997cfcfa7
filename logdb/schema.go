// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// the event table. seq packs the ledger sequence and the event index.
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY NOT NULL,
	time INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	address BLOB(20) NOT NULL,
	name TEXT NOT NULL,
	topic0 BLOB(32),
	topic1 BLOB(32),
	topic2 BLOB(32),
	data BLOB
);

CREATE INDEX IF NOT EXISTS event_i_time ON event(time);
CREATE INDEX IF NOT EXISTS event_i_txID ON event(txID);
CREATE INDEX IF NOT EXISTS event_i_address ON event(address, name);
CREATE INDEX IF NOT EXISTS event_i_topic0 ON event(topic0);
CREATE INDEX IF NOT EXISTS event_i_topic1 ON event(topic1);
`

const eventColumns = "seq, time, txID, txOrigin, address, name, topic0, topic1, topic2, data"
