// Package verification implements the code-gated account flows: registration,
// password reset and email change.
//
// Every flow follows the same shape. A request stores a short numeric code keyed
// by its subject (email for registration and email change, account for password
// reset), replacing any earlier code for that key, and queues a notification. A
// verify step checks existence, expiry and value in that order and, only when all
// pass, applies its mutation in a single transaction. A failed verify changes nothing.
package verification
