package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	obsSchema := compile("obs.schema.json")
	actSchema := compile("act.schema.json")
	resultSchema := compile("result.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "agent_name":"pilot1"
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "agent_id":"A1",
	  "world_params":{"tick_rate_hz":20,"seed":1337}
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var obs any
	_ = json.Unmarshal([]byte(`{
	  "type":"OBS",
	  "protocol_version":"1.0",
	  "tick":42,
	  "agent_id":"A1",
	  "self":{"pos":[0.5,64.0,0.5],"yaw":1.5707963,"held":"iron_pickaxe"},
	  "inventory":[{"item":"iron_pickaxe","count":1,"slot":0},{"item":"dirt","count":12,"slot":1}],
	  "breaking":{"name":"stone","pos":[1,64,0]},
	  "entities":[{"name":"zombie","pos":[3.5,64.0,1.5]}]
	}`), &obs)
	validate(obsSchema, obs)

	var act any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "id":"a-1",
	  "kind":"DIG_START",
	  "block_pos":[1,64,0]
	}`), &act)
	validate(actSchema, act)

	var control any
	_ = json.Unmarshal([]byte(`{
	  "type":"ACT",
	  "protocol_version":"1.0",
	  "id":"a-2",
	  "kind":"CONTROL",
	  "control":"forward",
	  "on":true
	}`), &control)
	validate(actSchema, control)

	var result any
	_ = json.Unmarshal([]byte(`{
	  "type":"RESULT",
	  "id":"a-1",
	  "ok":false,
	  "code":"E_INVALID_TARGET",
	  "message":"no block at (1,64,0)"
	}`), &result)
	validate(resultSchema, result)
}
