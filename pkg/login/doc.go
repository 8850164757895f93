// Package login authenticates accounts by email or phone number and password
// and issues token pairs.
package login
