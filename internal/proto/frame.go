package proto

import "fmt"

// EncodeCommand builds the fixed 8-byte command frame: bytes 0 and 1
// are reserved zeros, the opcode sits at byte 2, parameters follow,
// zero padded to the frame size.
func EncodeCommand(op byte, params ...byte) ([]byte, error) {
	if 1+len(params) > MaxPayload {
		return nil, NewFault(FaultProtocol, "",
			fmt.Sprintf("command payload is %d bytes, maximum is %d", 1+len(params), MaxPayload))
	}
	frame := make([]byte, FrameSize)
	frame[2] = op
	copy(frame[3:], params)
	return frame, nil
}

// DecodeMessage parses a response frame as a null-terminated ASCII
// string. An empty frame decodes to "". A non-empty frame without the
// terminator is not text and decodes to a protocol fault.
func DecodeMessage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if data[len(data)-1] != 0 {
		return "", NewFault(FaultProtocol, "",
			fmt.Sprintf("response frame not null terminated (last byte 0x%02x)", data[len(data)-1]))
	}
	return string(data[:len(data)-1]), nil
}
