package hub

import (
	"errors"
	"fmt"

	"github.com/srg/lwp3hub/pkg/lwp3/proto"
)

// State is a hub/peripheral session failure mode distinct from a decoded
// PeerError.
type State string

const (
	StatePeerDisconnected State = "peer_disconnected"
	StateTimedOut         State = "timed_out"
	StateInvalid          State = "invalid_state"
	StateInvalidArgument  State = "invalid_argument"
)

// SessionError is a structured hub-level failure; Is compares by State so
// callers can use errors.Is(err, ErrPeerDisconnected) etc.
type SessionError struct {
	St  State
	Msg string
}

func (e *SessionError) Error() string {
	if e.Msg == "" {
		return string(e.St)
	}
	return fmt.Sprintf("%s: %s", e.St, e.Msg)
}

func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	return ok && e.St == t.St
}

var (
	ErrPeerDisconnected = &SessionError{St: StatePeerDisconnected}
	ErrTimedOut         = &SessionError{St: StateTimedOut}
	ErrInvalidState     = &SessionError{St: StateInvalid}
	ErrInvalidArgument  = &SessionError{St: StateInvalidArgument}
)

// NewInvalidState builds an InvalidState error carrying a specific reason.
func NewInvalidState(msg string) error { return &SessionError{St: StateInvalid, Msg: msg} }

// NewInvalidArgument builds an InvalidArgument error carrying a specific reason.
func NewInvalidArgument(msg string) error { return &SessionError{St: StateInvalidArgument, Msg: msg} }

// ErrInvalidFrame re-exports the codec's sentinel so hub callers don't need
// to import proto just to compare errors.
var ErrInvalidFrame = proto.ErrInvalidFrame

// AsPeerError unwraps err into a *proto.PeerError, if that's what it is.
func AsPeerError(err error) (*proto.PeerError, bool) {
	var pe *proto.PeerError
	ok := errors.As(err, &pe)
	return pe, ok
}
