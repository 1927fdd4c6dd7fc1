// Package twitch talks to the Twitch OAuth and Helix endpoints.
//
// The client obtains app access tokens via the client-credentials grant and
// queries live broadcasts per user login. Helix call failures are reported as
// either a TransportError (carrying the HTTP status that drives the caller's
// re-authentication decision) or a ParseError (a 2xx body that did not decode).
package twitch
