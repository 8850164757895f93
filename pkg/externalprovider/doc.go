// Package externalprovider implements sign-in with Google.
//
// The flow has three legs:
//
//	GET  login/google/           redirect to Google with a short-lived state
//	GET  login/google/callback/  validate state, exchange code, resolve the account,
//	                             redirect to the frontend with a one-time exchange code
//	POST login/google/exchange/  trade the one-time code for a token pair
//
// Tokens never appear in a redirect URL. The exchange code lives for a minute and can be
// redeemed once.
//
// An account that registered with a password cannot be taken over by a Google sign-in
// with the same email; the callback answers with ErrUseStandardLogin instead.
package externalprovider
