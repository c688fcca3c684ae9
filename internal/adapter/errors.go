package adapter

import "errors"

var (
	// ErrUnauthorized maps HTTP 401: the request carried no usable
	// credential and the backend refused it.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrValidation maps the remaining 4xx statuses: the request itself
	// is faulty and retrying or queueing it cannot help.
	ErrValidation = errors.New("request rejected by validation")

	// ErrServerUnavailable maps 5xx statuses that survived the retry
	// budget. The backend was reached, so the device is online; the
	// failure surfaces to the caller instead of the offline queue.
	ErrServerUnavailable = errors.New("backend unavailable")

	// ErrBackendUnreachable marks transport-level failures where no HTTP
	// response arrived at all. Callers treat it as "device offline" and
	// may hand the operation to the offline queue.
	ErrBackendUnreachable = errors.New("backend unreachable")
)
