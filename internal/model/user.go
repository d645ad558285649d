// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Profile describes the authenticated account.
type Profile struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// User is the persisted session: bearer credential plus profile.
type User struct {
	AccessToken string  `json:"accessToken"`
	Profile     Profile `json:"user"`
}

// Authenticated reports whether the user carries a credential.
func (u *User) Authenticated() bool {
	return u != nil && u.AccessToken != ""
}

// DisplayName returns the best available human name.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.Profile.Name != "":
		return u.Profile.Name
	default:
		return u.Profile.Email
	}
}

// Clone returns a copy of u. A nil user stays nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
