// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides device-local key/value persistence for rigchat.
//
// Values are JSON documents stored in a single SQLite table. The session and
// theme preference stores are built on top of it.
//
// # Key Types
//
//   - KV: Key/value store backed by SQLite
//
// # Usage
//
//	kv, err := storage.Open(storage.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	defer kv.Close()
//
//	err = kv.SetJSON(ctx, "app:theme", pref)
//	err = kv.GetJSON(ctx, "app:theme", &pref)
//
// # Storage Location
//
// The database lives at ~/.rigchat/state.db unless configured otherwise.
package storage
