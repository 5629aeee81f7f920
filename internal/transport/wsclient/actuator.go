package wsclient

import (
	"context"
	"fmt"

	"voxelpilot.ai/internal/pilot/space"
	"voxelpilot.ai/internal/pilot/world"
	"voxelpilot.ai/internal/protocol"
)

func (c *Client) newAct(kind string) protocol.ActMsg {
	return protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		ID:              newID(),
		Kind:            kind,
	}
}

func (c *Client) SetControl(ctrl world.Control, on bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	act := c.newAct(protocol.ActControl)
	act.Control = string(ctrl)
	act.On = on
	return c.request(ctx, act)
}

func (c *Client) LookAt(ctx context.Context, target space.Pos, immediate bool) error {
	act := c.newAct(protocol.ActLook)
	act.Target = [3]float64{target.X, target.Y, target.Z}
	act.Immediate = immediate
	return c.request(ctx, act)
}

func (c *Client) Equip(ctx context.Context, itemName string) error {
	act := c.newAct(protocol.ActEquip)
	act.Item = itemName
	return c.request(ctx, act)
}

func (c *Client) Unequip(ctx context.Context) error {
	return c.request(ctx, c.newAct(protocol.ActUnequip))
}

func (c *Client) PlaceBlock(ctx context.Context, ref *world.Block, face space.BlockPos) error {
	act := c.newAct(protocol.ActPlace)
	act.RefPos = [3]int{ref.Pos.X, ref.Pos.Y, ref.Pos.Z}
	act.Face = [3]int{face.X, face.Y, face.Z}
	return c.request(ctx, act)
}

// DigStart fires a DIG_START and returns the channel its RESULT resolves;
// the gateway answers when the break completes or is aborted.
func (c *Client) DigStart(b *world.Block) <-chan error {
	done := make(chan error, 1)

	act := c.newAct(protocol.ActDigStart)
	act.BlockPos = [3]int{b.Pos.X, b.Pos.Y, b.Pos.Z}

	ch := make(chan protocol.ResultMsg, 1)
	c.mu.Lock()
	c.results[act.ID] = ch
	c.mu.Unlock()

	if err := c.writeJSON(act); err != nil {
		c.dropResult(act.ID)
		done <- err
		return done
	}

	go func() {
		select {
		case res := <-ch:
			if res.OK {
				done <- nil
			} else {
				done <- fmt.Errorf("dig %s: %s: %s", b.Name, res.Code, res.Message)
			}
		case <-c.closed:
			done <- ErrClosed
		}
	}()
	return done
}

// DigAbort is fire-and-forget; the in-flight DIG_START result reports the
// abort, there is nothing separate to wait for.
func (c *Client) DigAbort() {
	act := c.newAct(protocol.ActDigAbort)
	if err := c.writeJSON(act); err != nil {
		c.log.Printf("dig abort: %v", err)
	}
}

func (c *Client) CanDig(b *world.Block) bool {
	blk, err := c.query(protocol.QueryCanDig, [3]int{b.Pos.X, b.Pos.Y, b.Pos.Z})
	if err != nil {
		c.log.Printf("can_dig (%d,%d,%d): %v", b.Pos.X, b.Pos.Y, b.Pos.Z, err)
		return false
	}
	return blk.CanDig
}

func (c *Client) CurrentlyBreaking() *world.Block {
	obs, ok := c.snapshot()
	if !ok {
		return nil
	}
	return toBlock(obs.Breaking)
}
