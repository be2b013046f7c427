package conn

import (
	"fmt"

	"voxelgate/internal/mcproto"
	"voxelgate/internal/protocol"
)

// statusProgress tracks which of the two Status-stage packets have already
// been answered, enforcing the "exactly once each" rule.
type statusProgress struct {
	answeredStatus bool
	answeredPing   bool
}

func (c *Connection) handleHandshake(pkt protocol.Packet) error {
	intent, ok := pkt.(mcproto.Intention)
	if !ok {
		return nil
	}
	switch {
	case intent.NextStateStatus:
		c.writer.AnnounceStage(protocol.StageStatus)
		c.realStage = protocol.StageStatus
		c.status = &statusProgress{}
	default:
		// Login or Transfer: both proceed through the Login pipeline; the
		// spec scopes Transfer as out-of-scope so it is treated identically
		// to Login here.
		c.writer.AnnounceStage(protocol.StageLogin)
		c.realStage = protocol.StageLogin
	}
	return nil
}

func (c *Connection) handleStatus(pkt protocol.Packet) error {
	if c.status == nil {
		c.status = &statusProgress{}
	}
	switch p := pkt.(type) {
	case mcproto.StatusRequest:
		if c.status.answeredStatus {
			c.Kick("Bad packet: duplicate StatusRequest")
			return nil
		}
		c.status.answeredStatus = true
		motd := fmt.Sprintf(`{"version":{"name":%q,"protocol":0},"description":{"text":%q},"players":{"max":0,"online":0}}`,
			c.cfg.Version, c.cfg.Motd)
		if err := c.send(mcproto.StatusResponse{JSON: motd}); err != nil {
			return err
		}
	case mcproto.PingRequest:
		if c.status.answeredPing {
			c.Kick("Bad packet: duplicate PingRequest")
			return nil
		}
		c.status.answeredPing = true
		if err := c.send(mcproto.PongResponse{Payload: p.Payload}); err != nil {
			return err
		}
	default:
		return nil
	}
	if c.status.answeredStatus && c.status.answeredPing {
		c.closing = true
		c.Close()
	}
	return nil
}
