// Package common contains constants, sentinel errors and small helpers shared
// by the console packages.
package common

// AuthCookieName is the cookie that carries the session token on API
// requests. The same name is used as the local storage key for the token.
const AuthCookieName = "auth"

// UserStorageKey is the local storage key of the JSON-encoded session user.
const UserStorageKey = "skuder_user"

// LocationStorageKey is the local storage key of the last navigated location.
const LocationStorageKey = "location"
