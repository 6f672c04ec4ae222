// Package proto is the pure half of the autoloader protocol: command
// frame encoding, status token decoding and hardware state parsing.
// No I/O happens here.
package proto

// ---- COMMAND OPCODES ----

// Place and both drop commands share one opcode; the parameter byte
// selects the motion.
const (
	CmdPlaceDisk byte = 0x52
	CmdLiftDisk  byte = 0x47
	CmdGetState  byte = 0x43
)

// ---- COMMAND PARAMETERS ----

const (
	ParamPlace  byte = 0x01
	ParamAccept byte = 0x02
	ParamReject byte = 0x03
	ParamLift   byte = 0x01
)

// ---- STATUS CODES ----

// Raw status codes as reported after the "AT+" prefix.
const (
	StatusDiskInTray     = "S12" // the tray already has a disc
	StatusNoDiskInQueue  = "S14" // input queue is empty
	StatusTrayWrongState = "S10" // tray open/closed opposite of expected
	StatusDropperError   = "S03" // dropper/gripper fault
	StatusNoDiskInTray   = "S00" // the tray has no disc
	StatusDropperOK      = "O"   // lift or drop succeeded
	StatusPlaceOK        = "S07" // disc placed on tray
	StatusUnknownError   = "E09" // device-reported unclassified error
)

// StatusPrefix marks a status token in the response chatter.
const StatusPrefix = "AT+"

// ---- FRAME GEOMETRY ----

// FrameSize is the fixed length of an outgoing command frame:
// two reserved zero bytes, then opcode and parameters, zero padded.
const FrameSize = 8

// MaxPayload caps opcode plus parameter bytes per frame.
const MaxPayload = 6

// ---- STATE BIT POSITIONS ----

// Positions inside the brace-delimited state bit-string (0-indexed,
// confirmed on hardware).
const (
	bitDiskAvailable  = 1
	bitDiskInOpenTray = 3
	bitDiskLifted     = 4
	bitTrayOut        = 5
)

// minStateBits is the shortest state token the parser accepts.
const minStateBits = 7
