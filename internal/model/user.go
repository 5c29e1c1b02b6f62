// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account on the marketplace.
//
// WHY Password with json:"-"?
// The stored credential (a bcrypt hash, produced by the auth service) must
// never leak through an API response. The json:"-" tag makes the field
// invisible to encoding/json, so even a careless handler cannot expose it.
//
// The profile fields (FirstName..Address) are optional at registration and
// default to the empty string — we use zero values rather than pointers
// because an empty profile field and an unset one render the same way.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"` // unique across all users (enforced by the services)
	Password  string    `json:"-"`     // opaque credential, stored exactly as given
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserUpdate is a partial profile update.
//
// Each field is a pointer so that "not provided" (nil) and "set to the empty
// string" are distinguishable. A nil field leaves the stored value untouched;
// this replaces the original prototype's implicit "undefined fields are
// ignored" merge with an explicit present/absent indicator.
type UserUpdate struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
}
