package proto

import "testing"

func TestParseState_Bits(t *testing.T) {
	tests := []struct {
		name string
		bits string
		want HardwareState
	}{
		{name: "all clear", bits: "0000000", want: HardwareState{}},
		{name: "disk available", bits: "0100000", want: HardwareState{DiskAvailable: true}},
		{name: "disk in open tray", bits: "0001000", want: HardwareState{DiskInOpenTray: true}},
		{name: "disk lifted", bits: "0000100", want: HardwareState{DiskLifted: true}},
		{name: "tray out", bits: "0000010", want: HardwareState{TrayOut: true}},
		{name: "everything", bits: "0101110", want: HardwareState{
			DiskAvailable: true, DiskInOpenTray: true, DiskLifted: true, TrayOut: true,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, ok := ParseState([]string{"AT+S07", "{" + tt.bits + "}"})
			if !ok {
				t.Fatalf("expected valid parse")
			}
			if st != tt.want {
				t.Fatalf("state=%v want=%v", st, tt.want)
			}
		})
	}
}

func TestParseState_NoToken(t *testing.T) {
	st, ok := ParseState([]string{"AT+S07", "garbage", ""})
	if ok {
		t.Fatalf("expected invalid parse")
	}
	if st != (HardwareState{}) {
		t.Fatalf("degraded snapshot should be all false, got %v", st)
	}
}

func TestParseState_ShortToken(t *testing.T) {
	// fewer than 7 bits inside the braces is not a state token
	if _, ok := ParseState([]string{"{010}"}); ok {
		t.Fatalf("short token must not parse")
	}

	// a later, longer token still counts
	st, ok := ParseState([]string{"{010}", "{0100010}"})
	if !ok {
		t.Fatalf("expected the longer token to parse")
	}
	if !st.DiskAvailable || !st.TrayOut {
		t.Fatalf("unexpected state %v", st)
	}
}
