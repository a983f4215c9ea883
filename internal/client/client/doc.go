// Package client contains the client side of the userkeeper REST API.
//
// # Overview
//
//  1. A transport-agnostic API contract (see the Client interface) covering
//     registration, login, the current user and user administration.
//  2. A REST implementation (see RESTClient) built on fiber's HTTP client. It
//     keeps the access token obtained at login and sends it as a Bearer
//     header on protected calls.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx responses are returned as
// *APIError, which unwraps to the matching category from internal/common.
// Calling a protected endpoint before Login yields ErrNotLoggedIn.
//
// The client is meant for a single interactive session and is not safe for
// concurrent use.
package client
