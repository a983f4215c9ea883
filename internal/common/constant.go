// Package common contains shared constants and sentinel errors used by the
// server and the CLI client.
package common

// AuthorizationHeader carries the bearer access token on inbound and
// outbound HTTP requests.
const AuthorizationHeader = "Authorization"

// BearerScheme is the only authorization scheme the API accepts.
const BearerScheme = "Bearer"

// TokenTypeBearer is reported in token responses.
const TokenTypeBearer = "bearer"
