// Package common contains constants shared by the quotekeeper client
// components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the access token in AuthorizationHeaderName.
	BearerPrefix = "Bearer "

	// APIKeyHeaderName carries the public project key expected by the auth
	// service and the backend gateway.
	APIKeyHeaderName = "apikey"

	// RequestIDHeaderName tags every outbound request for log correlation.
	RequestIDHeaderName = "X-Request-Id"
)
