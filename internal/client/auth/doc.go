// Package auth defines the auth capability consumed by the session layer and
// an adapter for GoTrue-compatible auth services (as used by Supabase).
//
// The adapter keeps the session in memory only. It signs in with email and
// password, renews the access token shortly before it expires, and
// announces every change to registered listeners in order. When the token
// response does not carry the user or the expiry, they are read from the
// access token's JWT claims (sub, email, exp); the signature is not checked
// because the client has no key to check it with.
package auth
