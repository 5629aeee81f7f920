package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeObs     = "OBS"
	TypeAct     = "ACT"
	TypeResult  = "RESULT"
	TypeQuery   = "QUERY"
	TypeBlock   = "BLOCK"
)

// Act kinds.
const (
	ActControl  = "CONTROL"
	ActLook     = "LOOK"
	ActEquip    = "EQUIP"
	ActUnequip  = "UNEQUIP"
	ActPlace    = "PLACE"
	ActDigStart = "DIG_START"
	ActDigAbort = "DIG_ABORT"
)

// Query kinds.
const (
	QueryBlockAt = "BLOCK_AT"
	QueryCanDig  = "CAN_DIG"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
