// Package google provides OAuth2 authentication and token management for the
// Google Calendar API.
//
// The client secret is read from the descriptor downloaded from the Google
// Cloud Console. The resulting token is cached as JSON under
// ~/.credentials/reserver-it.json so the interactive authorization-code
// prompt only appears on the first run.
//
// AuthCodeFlow and TokenStore keep the provider and the filesystem behind
// narrow interfaces so the authorization logic can be exercised with fakes.
package google
