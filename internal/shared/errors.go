package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Identity errors
	ErrMissingKey      = fmt.Errorf("no identity key configured")
	ErrInvalidKey      = fmt.Errorf("invalid identity key")
	ErrWrongPassphrase = fmt.Errorf("wrong passphrase or corrupted keystore")
	ErrTimeout         = fmt.Errorf("operation timed out")

	// Event store and service errors
	ErrPublishFailed      = fmt.Errorf("event publish failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNoRelays           = fmt.Errorf("no relays configured")
	ErrEntityNotFound     = fmt.Errorf("entity not found")
	ErrBlobNotFound       = fmt.Errorf("blob not found on any server")
	ErrUploadRejected     = fmt.Errorf("upload rejected")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
