package proto

import (
	"fmt"
	"strings"
)

// HardwareState is an immutable snapshot of the four mechanism
// sensors. Any combination can occur in the field; none is forbidden.
type HardwareState struct {
	DiskAvailable  bool // a disc waits in the input queue
	DiskInOpenTray bool // a disc lies on the extended tray
	DiskLifted     bool // the gripper holds a disc
	TrayOut        bool // the tray is extended
}

func (s HardwareState) String() string {
	return fmt.Sprintf("{available=%t in_open_tray=%t lifted=%t tray_out=%t}",
		s.DiskAvailable, s.DiskInOpenTray, s.DiskLifted, s.TrayOut)
}

// ParseState scans response chatter for a brace-delimited bit-string
// of at least 7 characters and reads the four sensor positions. The
// second return is false when no valid token was found; the zero
// snapshot returned then must not be taken as proof of an idle
// mechanism.
func ParseState(msgs []string) (HardwareState, bool) {
	for _, m := range msgs {
		if len(m) < 2 || !strings.HasPrefix(m, "{") || !strings.HasSuffix(m, "}") {
			continue
		}
		bits := m[1 : len(m)-1]
		if len(bits) < minStateBits {
			continue
		}
		return HardwareState{
			DiskAvailable:  bits[bitDiskAvailable] == '1',
			DiskInOpenTray: bits[bitDiskInOpenTray] == '1',
			DiskLifted:     bits[bitDiskLifted] == '1',
			TrayOut:        bits[bitTrayOut] == '1',
		}, true
	}
	return HardwareState{}, false
}
