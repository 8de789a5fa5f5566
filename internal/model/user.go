// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a student account.
//
// The email address is the de facto identity: login happens through Google
// OAuth against the college domain, and everything downstream of the auth
// layer keys off the resolved email. We still generate our own internal
// string ID (xid) so primary keys aren't tied to a mutable email string —
// journal entries reference the ID, not the email.
//
// Preference fields hold values from fixed vocabularies (see the menu
// package); the store boundary validates them, the database just keeps JSON
// text. FavoriteDishes is an ordered list with set semantics: adds are
// no-ops for dishes already present, removes are no-ops for absent ones.
type User struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	HomeDiningHall      string    `json:"homeDiningHall"`      // e.g. "Tower"; empty until set
	Allergens           []string  `json:"allergens"`           // vendor allergen vocabulary
	DietaryRestrictions []string  `json:"dietaryRestrictions"` // e.g. "Vegan", "Halal"
	FavoriteDishes      []string  `json:"favoriteDishes"`      // free-text dish names, no duplicates
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
