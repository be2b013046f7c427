package conn

import (
	"time"

	"voxelgate/internal/events"
	"voxelgate/internal/mcproto"
	"voxelgate/internal/protocol"
)

// handleConfigOrPlay routes a Config- or Play-stage packet: the
// ConfigurationAcknowledged/FinishConfiguration back-and-forth, KeepAlive on
// either channel, and forwarding everything else as a PacketReadEvent.
func (c *Connection) handleConfigOrPlay(pkt protocol.Packet, now time.Time, stage protocol.Stage) error {
	switch stage {
	case protocol.StageConfig:
		switch p := pkt.(type) {
		case mcproto.FinishConfiguration:
			if c.Login.Substage == LoginFinishingConfig {
				return c.finishLoginToPlay()
			}
			return nil
		case mcproto.ConfigKeepAlive:
			c.handleKeepalive(p.ID, now)
			return nil
		case mcproto.ClientInformation:
			if c.View != nil {
				c.View.Distance.SetIfNewer(int32(p.ViewDistance), c.cfg.MaxViewDistance, c.nextPacketIndex())
			}
			return nil
		default:
			c.bus.EmitPacketRead(events.PacketReadEvent{
				Entity: c.Entity,
				Kind:   events.PacketKindConfig,
				Packet: pkt,
				Index:  c.nextPacketIndex(),
			})
			return nil
		}

	case protocol.StagePlay:
		switch p := pkt.(type) {
		case mcproto.ConfigurationAcknowledged:
			// Resource-pack/registry re-negotiation: swap back to Config and
			// let the writer observe the announcement before any Config
			// packet is enqueued.
			c.realStage = protocol.StageConfig
			c.writer.AnnounceStage(protocol.StageConfig)
			return nil
		case mcproto.PlayKeepAlive:
			c.handleKeepalive(p.ID, now)
			return nil
		default:
			c.bus.EmitPacketRead(events.PacketReadEvent{
				Entity: c.Entity,
				Kind:   events.PacketKindPlay,
				Packet: pkt,
				Index:  c.nextPacketIndex(),
			})
			return nil
		}
	}
	return nil
}
