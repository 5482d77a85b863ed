package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrMessageNotFound    = fmt.Errorf("message not found")
	ErrUnknownStatus      = fmt.Errorf("unknown receipt status")
	ErrEmptyPayload       = fmt.Errorf("message carries no payload")
	ErrSelfConversation   = fmt.Errorf("sender and receiver are the same user")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUnsupportedMedia   = fmt.Errorf("unsupported media type")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
)
