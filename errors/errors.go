package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrNotFound           = fmt.Errorf("not found")
	ErrAccountUnknown     = fmt.Errorf("account unknown")
	ErrNotAuthenticated   = fmt.Errorf("authentication required")
	ErrInvalidPayload     = fmt.Errorf("invalid payload")
	ErrUnknownEnvelope    = fmt.Errorf("unknown envelope type")
	ErrInvalidUsername    = fmt.Errorf("invalid username")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid token")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrEngineAuthRejected = fmt.Errorf("authentication rejected by server")
	ErrEngineGaveUp       = fmt.Errorf("reconnect attempts exhausted")
	ErrEngineClosed       = fmt.Errorf("engine disconnected")
)
