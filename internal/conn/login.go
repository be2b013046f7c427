package conn

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"

	"voxelgate/internal/crypto"
	"voxelgate/internal/events"
	"voxelgate/internal/mcproto"
	"voxelgate/internal/protocol"
	"voxelgate/internal/world"
)

// LoginSubstage is a Login-stage connection's position in the state chart
// described for the login pipeline.
type LoginSubstage int

const (
	LoginWaitingForHello LoginSubstage = iota
	LoginExchangingKeys
	LoginCheckingMojauth
	LoginFinishingLogin
	LoginFinishingConfig
)

// LoginState carries a connection's login-pipeline progress: the generated
// key pair and verify token while exchanging keys, and the pollable
// authentication future while checking Mojauth.
type LoginState struct {
	Substage LoginSubstage

	Username    string
	RSAKeys     *crypto.RSAKeyPair
	VerifyToken []byte

	Mojauth MojauthFuture
	UUID    uuid.UUID
}

func (c *Connection) handleLogin(pkt protocol.Packet) error {
	switch c.Login.Substage {
	case LoginWaitingForHello:
		return c.loginWaitingForHello(pkt)
	case LoginExchangingKeys:
		return c.loginExchangingKeys(pkt)
	case LoginFinishingLogin:
		return c.loginFinishingLogin(pkt)
	default:
		// CheckingMojauth and FinishingConfig don't expect a Login-stage
		// packet; anything received here is a protocol violation.
		c.Kick("Bad packet: unexpected packet during login")
		return nil
	}
}

func (c *Connection) loginWaitingForHello(pkt protocol.Packet) error {
	hello, ok := pkt.(mcproto.Hello)
	if !ok {
		c.Kick("Bad packet: expected Hello")
		return nil
	}

	if c.cfg.RejectNewConns {
		c.Kick(c.cfg.RejectReason)
		return nil
	}
	if c.ActiveConns != nil && c.cfg.MaxConns > 0 && c.ActiveConns() > c.cfg.MaxConns {
		c.Kick("Server is full")
		return nil
	}

	c.Login.Username = hello.Username
	c.Username = hello.Username

	if err := c.send(mcproto.LoginCompression{Threshold: int32(c.cfg.CompressThreshold)}); err != nil {
		return err
	}
	c.EnableCompression(c.cfg.CompressThreshold)

	var keys *crypto.RSAKeyPair
	if c.RSAPool != nil {
		keys = c.RSAPool.Random()
	} else {
		var err error
		keys, err = crypto.GenerateRSAKeyPair()
		if err != nil {
			c.Kick("Internal error")
			return fmt.Errorf("conn: generating RSA key pair: %w", err)
		}
	}
	c.Login.RSAKeys = keys

	token := make([]byte, 4)
	if _, err := rand.Read(token); err != nil {
		c.Kick("Internal error")
		return fmt.Errorf("conn: generating verify token: %w", err)
	}
	c.Login.VerifyToken = token

	if err := c.send(mcproto.EncryptionRequest{
		ServerID:    c.cfg.ServerID,
		PublicKey:   keys.PublicKeyDER,
		VerifyToken: token,
		ShouldAuth:  c.cfg.MojauthEnabled,
	}); err != nil {
		return err
	}

	c.Login.Substage = LoginExchangingKeys
	return nil
}

func (c *Connection) loginExchangingKeys(pkt protocol.Packet) error {
	resp, ok := pkt.(mcproto.EncryptionResponse)
	if !ok {
		c.Kick("Bad packet: expected EncryptionResponse")
		return nil
	}

	verify, err := crypto.DecryptPKCS1v15(c.Login.RSAKeys.PrivateKey, resp.VerifyToken)
	if err != nil || !bytesEqual(verify, c.Login.VerifyToken) {
		c.Kick("Key exchange verification failed")
		return nil
	}

	sharedSecret, err := crypto.DecryptPKCS1v15(c.Login.RSAKeys.PrivateKey, resp.SharedSecret)
	if err != nil {
		c.Kick("Key exchange verification failed")
		return nil
	}
	if err := c.InstallCipher(sharedSecret); err != nil {
		c.Kick("Key exchange verification failed")
		return nil
	}

	if c.cfg.MojauthEnabled {
		c.Login.Mojauth = StartOnlineAuth(c.ctx, c.Login.Username, c.cfg.ServerID,
			sharedSecret, c.Login.RSAKeys.PublicKeyDER)
		c.Login.Substage = LoginCheckingMojauth
		return nil
	}

	c.Login.Mojauth = SynthesizeOfflineAuth(c.Login.Username)
	result, _, _ := c.Login.Mojauth.Poll()
	c.Login.UUID = result.UUID
	c.Login.Username = result.Username
	return c.handleMojauthReady()
}

// PollLogin is called once per scheduler tick; it is the only place
// CheckingMojauth makes progress, since it isn't triggered by an incoming
// packet.
func (c *Connection) PollLogin() error {
	if c.closing || c.Login.Substage != LoginCheckingMojauth {
		return nil
	}
	result, ready, err := c.Login.Mojauth.Poll()
	if !ready {
		return nil
	}
	if err != nil {
		c.Kick(fmt.Sprintf("Authentication failed: %v", err))
		return nil
	}
	c.Login.UUID = result.UUID
	c.Login.Username = result.Username
	return c.handleMojauthReady()
}

// handleMojauthReady implements the HandleMojauth state: send LoginFinished
// and move on to FinishingLogin.
func (c *Connection) handleMojauthReady() error {
	c.UUID = c.Login.UUID
	c.Username = c.Login.Username
	hi, lo := uuidHiLo(c.Login.UUID)

	if err := c.send(mcproto.LoginFinished{UUIDHi: hi, UUIDLo: lo, Username: c.Login.Username}); err != nil {
		return err
	}
	c.Login.Substage = LoginFinishingLogin
	return nil
}

func (c *Connection) loginFinishingLogin(pkt protocol.Packet) error {
	if _, ok := pkt.(mcproto.LoginAcknowledged); !ok {
		c.Kick("Bad packet: expected LoginAcknowledged")
		return nil
	}

	c.realStage = protocol.StageConfig
	c.writer.AnnounceStage(protocol.StageConfig)

	if err := c.sendTagged(protocol.StageConfig, mcproto.ConfigCustomPayload{
		Channel: "minecraft:brand",
		Data:    brandPayload(c.cfg.ServerBrand),
	}); err != nil {
		return err
	}
	if err := c.sendTagged(protocol.StageConfig, mcproto.SelectKnownPacks{}); err != nil {
		return err
	}
	for _, reg := range c.Registries {
		if err := c.sendTagged(protocol.StageConfig, reg); err != nil {
			return err
		}
	}

	c.View = world.NewView(c.Entity, c.world, c.cfg.MinViewDistance)
	if c.driver != nil {
		c.driver.Register(c.View)
	}

	if err := c.sendTagged(protocol.StageConfig, mcproto.FinishConfiguration{}); err != nil {
		return err
	}
	c.Login.Substage = LoginFinishingConfig
	return nil
}

// finishLoginToPlay implements the FinishingConfig → Play transition,
// called from the Config-stage FinishConfiguration handler in play.go.
func (c *Connection) finishLoginToPlay() error {
	c.realStage = protocol.StagePlay
	c.writer.AnnounceStage(protocol.StagePlay)
	c.bus.EmitPlayerJoined(events.PlayerJoined{Entity: c.Entity})

	hi, lo := uuidHiLo(c.UUID)

	if err := c.sendTagged(protocol.StagePlay, mcproto.PlayLogin{
		EntityID:         1, // the connection's own player entity is always id 1
		DimensionNames:   []string{c.cfg.DefaultDimID},
		DimensionName:    c.cfg.DefaultDimID,
		GameMode:         2, // Adventure
		ViewDistance:     c.View.Distance.Radius,
		SimulationDist:   c.View.Distance.Radius,
		ReducedDebugInfo: false,
	}); err != nil {
		return err
	}
	if err := c.sendTagged(protocol.StagePlay, mcproto.PlayerInfoUpdateAddPlayer{
		UUIDHi: hi, UUIDLo: lo, Name: c.Username,
	}); err != nil {
		return err
	}
	if err := c.sendTagged(protocol.StagePlay, mcproto.AddEntity{
		EntityID: 1, UUIDHi: hi, UUIDLo: lo, EntityType: 128, // player
	}); err != nil {
		return err
	}
	if err := c.sendTagged(protocol.StagePlay, mcproto.GameEvent{Event: mcproto.GameEventWaitForChunks}); err != nil {
		return err
	}

	c.Keepalive = KeepaliveState{Kind: KeepaliveSending, SendAt: time.Now().Add(c.cfg.KeepaliveSend)}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func uuidHiLo(id uuid.UUID) (hi, lo uint64) {
	b := id[:]
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(b[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(b[i])
	}
	return hi, lo
}

func brandPayload(brand string) []byte {
	w := mcproto.GetWriter()
	defer w.Put()
	w.WriteString(brand)
	return append([]byte(nil), w.Bytes()...)
}
