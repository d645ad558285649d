// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package theme persists the user's appearance preference.
//
// The preference is stored as JSON under the "app:theme" key of the device
// store. Loading validates each field on its own, so one bad field never
// discards the others. Every setter persists immediately and notifies
// subscribers.
//
// # Usage
//
//	prefs := theme.NewStore(kv)
//	prefs.Init(ctx)
//	prefs.Subscribe(func(p theme.Preference) { ui.ApplyTheme(p) })
//	prefs.ToggleDark(ctx)
package theme
