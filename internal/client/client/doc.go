// Package client contains the credentialed HTTP client used to talk to the
// quotekeeper resource backend.
//
// # Overview
//
// HTTPClient reads the current session from a SessionSource on every call
// and attaches its access token as "Authorization: Bearer <token>". Calls
// without a session go out unauthenticated unless RequireSession is passed,
// in which case they fail locally with ErrUnauthenticated.
//
// Typed helpers cover the backend surface:
//
//	GET  /api/me              GetProfile
//	PUT  /api/me              UpdateProfile
//	GET  /api/daily-quote     DailyQuote
//	GET  /api/{coll}          ResourceAPI.List   (coll = quotes | interests)
//	POST /api/{coll}          ResourceAPI.Create
//	DELETE /api/{coll}/{id}   ResourceAPI.Delete
//
// # Error Handling
//
// Non-success responses become *RemoteError with the message taken from the
// JSON error body when there is one. A 401 matches ErrUnauthenticated under
// errors.Is. Network failures wrap ErrTransientFetch. Records that do not
// match the expected shape are dropped from lists and logged, and rejected
// on create with ErrMalformedResponse.
package client
