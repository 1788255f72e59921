package proto

// GenericError is the upstream-only error notification sent in response to
// a downstream command the hub rejected.
type GenericError struct {
	base
	Command byte
	Code    ErrorCode
}

func (m *GenericError) Kind() Kind { return KindGenericError }

// AsPeerError converts the notification into an error value usable with
// errors.Is/errors.As.
func (m *GenericError) AsPeerError() *PeerError {
	return &PeerError{Cmd: m.Command, Code: m.Code}
}

func decodeGenericError(body []byte) (Message, error) {
	if len(body) < 2 {
		return nil, ErrInvalidFrame
	}
	return &GenericError{base: newBase(), Command: body[0], Code: ErrorCode(body[1])}, nil
}
