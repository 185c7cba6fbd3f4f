// Package youtube uploads rendered sermon videos through the YouTube Data
// API's resumable upload protocol.
//
// Authentication uses a long-lived OAuth2 refresh token minted once during
// setup; the client exchanges it for short-lived access tokens on demand.
// Uploads open a resumable session and stream the file in aligned chunks,
// resuming from the server's reported offset after a 308 response.
package youtube
