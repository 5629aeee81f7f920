package protocol

type BlockState struct {
	Name  string `json:"name"`
	Pos   [3]int `json:"pos"`
	Empty bool   `json:"empty,omitempty"`
}

type ItemStack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
	Slot  int    `json:"slot"`
}

type EntityObs struct {
	Name string     `json:"name"`
	Pos  [3]float64 `json:"pos"`
}

type SelfObs struct {
	Pos  [3]float64 `json:"pos"`
	Yaw  float64    `json:"yaw"`
	Held string     `json:"held,omitempty"`
}

// OBS (server -> client): pushed every tick. Carries the agent pose, the
// inventory, the block currently being broken (if any) and nearby entities.
type ObsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	AgentID         string `json:"agent_id"`

	Self      SelfObs     `json:"self"`
	Inventory []ItemStack `json:"inventory"`

	Breaking *BlockState `json:"breaking,omitempty"`
	Entities []EntityObs `json:"entities,omitempty"`
}

// ACT (client -> server): one actuation request. The server answers with a
// RESULT carrying the same id; for DIG_START the result arrives when the
// break completes or is aborted.
type ActMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Kind            string `json:"kind"`

	Control string `json:"control,omitempty"`
	On      bool   `json:"on,omitempty"`

	Target    [3]float64 `json:"target,omitempty"`
	Immediate bool       `json:"immediate,omitempty"`

	Item string `json:"item,omitempty"`

	RefPos [3]int `json:"ref_pos,omitempty"`
	Face   [3]int `json:"face,omitempty"`

	BlockPos [3]int `json:"block_pos,omitempty"`
}

// QUERY (client -> server): synchronous cell lookup, answered with BLOCK.
type QueryMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Kind            string `json:"kind"`
	Pos             [3]int `json:"pos"`
}

// BLOCK (server -> client)
type BlockMsg struct {
	Type   string      `json:"type"`
	ID     string      `json:"id"`
	Block  *BlockState `json:"block,omitempty"`
	CanDig bool        `json:"can_dig,omitempty"`
}

// RESULT (server -> client)
type ResultMsg struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
