package proto

// decoders maps each upstream Kind to its body decoder, as one map
// literal listing every decodable kind.
var decoders = map[Kind]func([]byte) (Message, error){
	KindHubProperties:           decodeHubProperties,
	KindHubAction:               decodeHubAction,
	KindHubAlert:                decodeHubAlert,
	KindHubAttachedIO:           decodeHubAttachedIO,
	KindGenericError:            decodeGenericError,
	KindPortInfo:                decodePortInfo,
	KindPortModeInfo:            decodePortModeInfo,
	KindPortValueSingle:         decodePortValueSingle,
	KindPortValueCombined:       decodePortValueCombined,
	KindPortInputFormatSingle:   decodePortInputFormatSingle,
	KindPortInputFormatCombined: decodePortInputFormatCombined,
	KindPortOutputFeedback:      decodePortOutputFeedback,
}

// Decode parses a frame's message-type byte and body into a concrete
// Message. It is the inverse of a Downstream's Encode for the kinds the
// hub itself originates (HubProperties, HubAction, HubAlert) and the
// sole decode path for the kinds only the hub originates.
func Decode(msgType byte, body []byte) (Message, error) {
	dec, ok := decoders[Kind(msgType)]
	if !ok {
		return nil, ErrInvalidFrame
	}
	return dec(body)
}
