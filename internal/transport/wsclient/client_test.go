package wsclient_test

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/world"
	"voxelpilot.ai/internal/protocol"
	"voxelpilot.ai/internal/transport/wsclient"
)

// fakeGateway scripts the server half of the session: handshake, one OBS
// push, then canned answers for ACT and QUERY.
type fakeGateway struct {
	upgrader websocket.Upgrader

	mu sync.Mutex // serializes writes; results may come from timers
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (g *fakeGateway) write(conn *websocket.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

func (g *fakeGateway) handler(t *testing.T) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := g.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var hello protocol.HelloMsg
		if err := json.Unmarshal(msg, &hello); err != nil || hello.Type != protocol.TypeHello {
			t.Errorf("expected HELLO, got %s", msg)
			return
		}

		g.write(conn, protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			AgentID:         "A1",
			WorldParams:     protocol.WorldParams{TickRateHz: 20, Seed: 1337},
		})
		g.write(conn, protocol.ObsMsg{
			Type:            protocol.TypeObs,
			ProtocolVersion: protocol.Version,
			Tick:            1,
			AgentID:         "A1",
			Self:            protocol.SelfObs{Pos: [3]float64{0.5, 64, 0.5}, Yaw: 0, Held: "iron_pickaxe"},
			Inventory: []protocol.ItemStack{
				{Item: "iron_pickaxe", Count: 1, Slot: 0},
				{Item: "dirt", Count: 12, Slot: 1},
			},
			Entities: []protocol.EntityObs{
				{Name: "zombie", Pos: [3]float64{8.5, 64, 0.5}},
				{Name: "zombie", Pos: [3]float64{3.5, 64, 0.5}},
				{Name: "cow", Pos: [3]float64{1.5, 64, 0.5}},
			},
		})

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeAct:
				var act protocol.ActMsg
				if err := json.Unmarshal(msg, &act); err != nil {
					continue
				}
				g.handleAct(conn, act)
			case protocol.TypeQuery:
				var q protocol.QueryMsg
				if err := json.Unmarshal(msg, &q); err != nil {
					continue
				}
				g.handleQuery(conn, q)
			}
		}
	}
}

func (g *fakeGateway) handleAct(conn *websocket.Conn, act protocol.ActMsg) {
	switch act.Kind {
	case protocol.ActDigAbort:
		// Fire-and-forget, no RESULT.
	case protocol.ActDigStart:
		id := act.ID
		time.AfterFunc(10*time.Millisecond, func() {
			g.write(conn, protocol.ResultMsg{Type: protocol.TypeResult, ID: id, OK: true})
		})
	case protocol.ActEquip:
		if act.Item == "missing" {
			g.write(conn, protocol.ResultMsg{
				Type: protocol.TypeResult, ID: act.ID, OK: false,
				Code: protocol.ErrInvalidTarget, Message: "not in inventory",
			})
			return
		}
		g.write(conn, protocol.ResultMsg{Type: protocol.TypeResult, ID: act.ID, OK: true})
	default:
		g.write(conn, protocol.ResultMsg{Type: protocol.TypeResult, ID: act.ID, OK: true})
	}
}

func (g *fakeGateway) handleQuery(conn *websocket.Conn, q protocol.QueryMsg) {
	resp := protocol.BlockMsg{Type: protocol.TypeBlock, ID: q.ID}
	switch q.Kind {
	case protocol.QueryBlockAt:
		if q.Pos == [3]int{1, 64, 0} {
			resp.Block = &protocol.BlockState{Name: "stone", Pos: q.Pos}
		}
	case protocol.QueryCanDig:
		resp.CanDig = true
	}
	g.write(conn, resp)
}

func dialFake(t *testing.T) *wsclient.Client {
	t.Helper()
	srv := httptest.NewServer(newFakeGateway().handler(t))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	logger := log.New(io.Discard, "", 0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := wsclient.Dial(ctx, url, "pilot-test", logger)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	if err := c.WaitReady(ctx); err != nil {
		t.Fatalf("wait ready: %v", err)
	}
	return c
}

func TestClient_HandshakeAndSnapshot(t *testing.T) {
	c := dialFake(t)

	if got := c.AgentID(); got != "A1" {
		t.Fatalf("agent id: got %q want A1", got)
	}
	if got := c.Position(); got != (space.Pos{X: 0.5, Y: 64, Z: 0.5}) {
		t.Fatalf("position: got %+v", got)
	}
	if items := c.Items(); len(items) != 2 || items[0].Name != "iron_pickaxe" {
		t.Fatalf("inventory: got %+v", items)
	}
	held := c.HeldItem()
	if held == nil || held.Name != "iron_pickaxe" || held.Slot != 0 {
		t.Fatalf("held: got %+v", held)
	}
	if c.CurrentlyBreaking() != nil {
		t.Fatal("nothing should be breaking")
	}
}

func TestClient_BlockQueries(t *testing.T) {
	c := dialFake(t)

	b := c.BlockAt(space.BlockPos{X: 1, Y: 64, Z: 0})
	if b == nil || b.Name != "stone" {
		t.Fatalf("block at (1,64,0): got %+v", b)
	}
	if b := c.BlockAt(space.BlockPos{X: 5, Y: 5, Z: 5}); b != nil {
		t.Fatalf("air cell should be nil, got %+v", b)
	}
	if !c.CanDig(&world.Block{Name: "stone", Pos: space.BlockPos{X: 1, Y: 64, Z: 0}}) {
		t.Fatal("can_dig should be true")
	}
}

func TestClient_ActRoundTrip(t *testing.T) {
	c := dialFake(t)
	ctx := context.Background()

	if err := c.Equip(ctx, "iron_pickaxe"); err != nil {
		t.Fatalf("equip: %v", err)
	}
	err := c.Equip(ctx, "missing")
	if err == nil || !strings.Contains(err.Error(), protocol.ErrInvalidTarget) {
		t.Fatalf("equip missing: got %v want %s", err, protocol.ErrInvalidTarget)
	}
	if err := c.SetControl(world.ControlForward, true); err != nil {
		t.Fatalf("set control: %v", err)
	}
	if err := c.LookAt(ctx, space.Pos{X: 1.5, Y: 64.5, Z: 0.5}, true); err != nil {
		t.Fatalf("look at: %v", err)
	}
}

func TestClient_DigStartResolves(t *testing.T) {
	c := dialFake(t)

	done := c.DigStart(&world.Block{Name: "stone", Pos: space.BlockPos{X: 1, Y: 64, Z: 0}})
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("dig: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("dig result never arrived")
	}
}

func TestClient_NearestEntity(t *testing.T) {
	c := dialFake(t)

	e := c.NearestEntity(func(e world.Entity) bool { return e.Name == "zombie" })
	if e == nil || e.Pos.X != 3.5 {
		t.Fatalf("nearest zombie: got %+v", e)
	}
	if e := c.NearestEntity(func(e world.Entity) bool { return e.Name == "creeper" }); e != nil {
		t.Fatalf("no creeper nearby, got %+v", e)
	}
}
