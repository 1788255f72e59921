package proto

import "time"

// Kind is the LWP3 message-type byte, closed over the set this codec knows
// how to decode.
type Kind byte

const (
	KindHubProperties                Kind = 0x01
	KindHubAction                    Kind = 0x02
	KindHubAlert                     Kind = 0x03
	KindHubAttachedIO                Kind = 0x04
	KindGenericError                 Kind = 0x05
	KindPortInfoRequest              Kind = 0x21
	KindPortModeInfoRequest          Kind = 0x22
	KindPortInputFormatSetupSingle   Kind = 0x41
	KindPortInputFormatSetupCombined Kind = 0x42
	KindPortInfo                     Kind = 0x43
	KindPortModeInfo                 Kind = 0x44
	KindPortValueSingle              Kind = 0x45
	KindPortValueCombined            Kind = 0x46
	KindPortInputFormatSingle        Kind = 0x47
	KindPortInputFormatCombined      Kind = 0x48
	KindVirtualPortSetup             Kind = 0x61
	KindPortOutput                   Kind = 0x81
	KindPortOutputFeedback           Kind = 0x82
)

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

var kindNames = map[Kind]string{
	KindHubProperties:                "HubProperties",
	KindHubAction:                    "HubAction",
	KindHubAlert:                     "HubAlert",
	KindHubAttachedIO:                "HubAttachedIO",
	KindGenericError:                 "GenericError",
	KindPortInfoRequest:              "PortInfoRequest",
	KindPortModeInfoRequest:          "PortModeInfoRequest",
	KindPortInputFormatSetupSingle:   "PortInputFormatSetupSingle",
	KindPortInputFormatSetupCombined: "PortInputFormatSetupCombined",
	KindPortInfo:                     "PortInfo",
	KindPortModeInfo:                 "PortModeInfo",
	KindPortValueSingle:              "PortValueSingle",
	KindPortValueCombined:            "PortValueCombined",
	KindPortInputFormatSingle:        "PortInputFormatSingle",
	KindPortInputFormatCombined:      "PortInputFormatCombined",
	KindVirtualPortSetup:             "VirtualPortSetup",
	KindPortOutput:                   "PortOutput",
	KindPortOutputFeedback:           "PortOutputFeedback",
}

// Message is any decoded LWP3 frame, upstream or downstream.
type Message interface {
	Kind() Kind
	Timestamp() time.Time
}

// Downstream is a message the host can emit. NeedsReply reports whether the
// session must rendezvous on a matching upstream reply before `send`
// returns; IsReply decides whether a given upstream message is that reply.
type Downstream interface {
	Message
	Encode() []byte
	NeedsReply() bool
	IsReply(upstream Message) bool
}

// base is embedded by every decoded message to carry the decode-time
// timestamp.
type base struct {
	ts time.Time
}

func (b base) Timestamp() time.Time { return b.ts }

func newBase() base { return base{ts: time.Now()} }
