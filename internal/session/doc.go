// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the signed-in user and tracks process activity.
//
// The user record (bearer credential plus profile) lives under the "user"
// key of the device store. Every change is written back immediately; a reset
// writes null. A value that cannot be decoded is removed on load and the
// client starts signed out.
//
// # Key Types
//
//   - Store: Persisted user with change subscribers, an api.TokenSource
//   - Activity: Process session id, start time and idle tracking
//   - TickMsg: Bubble Tea message for periodic status refresh
//
// # Usage
//
//	users := session.NewStore(kv)
//	if _, err := users.Load(ctx); err != nil {
//	    return err
//	}
//	client := api.NewClient(cfg.API.BaseURL).WithTokenSource(users)
//	client.OnUnauthorized(func() { users.Reset(context.Background()) })
package session
