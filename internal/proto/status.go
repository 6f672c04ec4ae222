package proto

import (
	"fmt"
	"strings"
)

// ExtractStatus returns the first status token ("AT+...") from the
// response chatter of one command.
func ExtractStatus(msgs []string) (string, error) {
	for _, m := range msgs {
		if strings.HasPrefix(m, StatusPrefix) {
			return m, nil
		}
	}
	return "", NewFault(FaultProtocol, "",
		fmt.Sprintf("no AT+ status token in response %q", msgs))
}

// Decoded is the outcome of decoding one status token.
// Exactly one of Fault and Info is meaningful.
type Decoded struct {
	Fault *Fault // nil on success
	Info  string // success or informational description
}

// DecodeStatus maps a raw status token onto a fault or a success
// description. It is pure and total: codes outside the fault table
// decode to an informational string, never a fault.
func DecodeStatus(token string) Decoded {
	code := strings.TrimPrefix(token, StatusPrefix)

	switch code {
	case StatusDiskInTray:
		return Decoded{Fault: NewFault(FaultDiskInTray, code, "the tray already has a disc")}
	case StatusNoDiskInQueue:
		return Decoded{Fault: NewFault(FaultNoDiskInQueue, code, "no disc in the input queue")}
	case StatusTrayWrongState:
		return Decoded{Fault: NewFault(FaultTrayWrongState, code, "the tray is in the opposite state it should be in")}
	case StatusDropperError:
		return Decoded{Fault: NewFault(FaultDropper, code, "dropper fault (missing disc, or placing while still lifted)")}
	case StatusNoDiskInTray:
		return Decoded{Fault: NewFault(FaultNoDiskInTray, code, "the tray has no disc in it")}
	case StatusUnknownError:
		return Decoded{Fault: NewFault(FaultUnknownHardware, code, "unknown hardware error")}
	case StatusDropperOK:
		return Decoded{Info: "dropper success (lift or drop)"}
	case StatusPlaceOK:
		return Decoded{Info: "disc placed on tray"}
	default:
		return Decoded{Info: fmt.Sprintf("unknown status code %q", code)}
	}
}
