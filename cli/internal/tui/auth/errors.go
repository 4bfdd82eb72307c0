// ABOUTME: Error taxonomy for the auth session controller
// ABOUTME: Boundary failures are wrapped around these sentinels with %w

package auth

import "errors"

var (
	// ErrQRIssuanceFailed means the backend could not issue a login QR code
	ErrQRIssuanceFailed = errors.New("qr code issuance failed")
	// ErrQRExpired means the QR code expired before it was confirmed
	ErrQRExpired = errors.New("qr code expired")
	// ErrQRConfirmationFailed means the scanned login could not be confirmed
	ErrQRConfirmationFailed = errors.New("qr login confirmation failed")
	// ErrCookieLoginFailed means the backend rejected the submitted cookie
	ErrCookieLoginFailed = errors.New("cookie login failed")
	// ErrAccountInfoUnavailable is non-fatal: login completes with a placeholder identity
	ErrAccountInfoUnavailable = errors.New("account info unavailable")
	// ErrEmptyCookie is returned for a blank cookie without calling the backend
	ErrEmptyCookie = errors.New("cookie is empty")
)
