package domain

import "errors"

var (
	// ErrAuthFailed means the submitted shared secret was wrong. User
	// visible and retryable.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrInvalidToken means a presented token is unknown to the registry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired means a previously valid token passed its expiry;
	// any session using it must terminate.
	ErrTokenExpired = errors.New("token expired")

	// ErrDeviceUnavailable means the capture hardware could not be opened,
	// including after the fallback attempt.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrDeviceClosed means a read was attempted on a closed device.
	ErrDeviceClosed = errors.New("capture device closed")
)
