package conn

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// MojauthResult is the verified (or synthesised) identity a login reaches
// once authentication completes.
type MojauthResult struct {
	UUID     uuid.UUID
	Username string
}

// MojauthFuture is a manually-polled handle to an in-flight authentication
// check. The login state machine owns the handle and polls it once per
// tick rather than blocking a goroutine on the network round trip —
// mirroring the source's coroutine-shaped login (see DESIGN.md).
type MojauthFuture interface {
	Poll() (result MojauthResult, ready bool, err error)
}

// offlineMojauth is already resolved at construction: used when
// mojauth_enabled=false, synthesising a stable UUID the way vanilla
// offline-mode servers derive one.
type offlineMojauth struct {
	result MojauthResult
}

// SynthesizeOfflineAuth returns an already-ready future carrying a
// deterministic "OfflinePlayer:<username>" UUID.
func SynthesizeOfflineAuth(username string) MojauthFuture {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = (sum[6] & 0x0F) | 0x30 // version 3
	sum[8] = (sum[8] & 0x3F) | 0x80 // RFC 4122 variant
	id, _ := uuid.FromBytes(sum[:])
	return &offlineMojauth{result: MojauthResult{UUID: id, Username: username}}
}

func (o *offlineMojauth) Poll() (MojauthResult, bool, error) { return o.result, true, nil }

type mojauthOutcome struct {
	result MojauthResult
	err    error
}

// onlineMojauth launches the Mojang session-server hasJoined request on its
// own goroutine; Poll never blocks.
type onlineMojauth struct {
	done chan mojauthOutcome
}

// StartOnlineAuth begins an asynchronous hasJoined verification against
// Mojang's session server.
func StartOnlineAuth(ctx context.Context, username, serverID string, sharedSecret, publicKeyDER []byte) MojauthFuture {
	f := &onlineMojauth{done: make(chan mojauthOutcome, 1)}
	go f.run(ctx, username, serverID, sharedSecret, publicKeyDER)
	return f
}

func (f *onlineMojauth) run(ctx context.Context, username, serverID string, sharedSecret, publicKeyDER []byte) {
	hash := serverHash(serverID, sharedSecret, publicKeyDER)
	u := fmt.Sprintf("https://sessionserver.mojang.com/session/minecraft/hasJoined?username=%s&serverId=%s",
		url.QueryEscape(username), url.QueryEscape(hash))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		f.done <- mojauthOutcome{err: err}
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		f.done <- mojauthOutcome{err: err}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.done <- mojauthOutcome{err: fmt.Errorf("mojauth: session server returned %d", resp.StatusCode)}
		return
	}

	var body struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		f.done <- mojauthOutcome{err: fmt.Errorf("mojauth: decoding session response: %w", err)}
		return
	}
	id, err := uuid.Parse(insertDashes(body.ID))
	if err != nil {
		f.done <- mojauthOutcome{err: fmt.Errorf("mojauth: parsing uuid: %w", err)}
		return
	}
	f.done <- mojauthOutcome{result: MojauthResult{UUID: id, Username: body.Name}}
}

func (f *onlineMojauth) Poll() (MojauthResult, bool, error) {
	select {
	case out := <-f.done:
		return out.result, true, out.err
	default:
		return MojauthResult{}, false, nil
	}
}

// serverHash computes the vanilla server-id hash: SHA-1 of serverID +
// sharedSecret + publicKeyDER, formatted the way Java's
// `new BigInteger(digest).toString(16)` does — a signed hex string using
// two's-complement negation when the digest's top bit is set.
func serverHash(serverID string, sharedSecret, publicKeyDER []byte) string {
	h := sha1.New()
	h.Write([]byte(serverID))
	h.Write(sharedSecret)
	h.Write(publicKeyDER)
	digest := h.Sum(nil)

	negative := digest[0]&0x80 != 0
	if negative {
		twosComplement(digest)
	}
	hexStr := new(big.Int).SetBytes(digest).Text(16)
	if negative {
		return "-" + hexStr
	}
	return hexStr
}

// twosComplement negates digest in place, treating it as a big-endian
// two's-complement integer.
func twosComplement(digest []byte) {
	carry := true
	for i := len(digest) - 1; i >= 0; i-- {
		digest[i] = ^digest[i]
		if carry {
			carry = digest[i] == 0xFF
			digest[i]++
		}
	}
}

func insertDashes(id string) string {
	if len(id) != 32 {
		return id
	}
	return id[0:8] + "-" + id[8:12] + "-" + id[12:16] + "-" + id[16:20] + "-" + id[20:]
}
