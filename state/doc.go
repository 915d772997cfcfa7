// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the ledger world state: per-address accounts and
// contract storage slots. Writes are journaled in a stacked map so a
// failed call can be reverted to a checkpoint; committed changes are
// flattened into a Stage and written in one batch.
package state
