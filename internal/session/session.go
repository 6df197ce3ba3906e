// Package session implements the per-peer protocol state machine:
// envelope strip, decrypt, inflate, and split on receive; concat,
// deflate, encrypt, and envelope on send. A Session is a passive value —
// it does not own a goroutine — driven entirely by the Listener's
// receive dispatch and periodic flush.
package session

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog"

	"bedrock-login-server/internal/cipher"
	"bedrock-login-server/internal/codec"
	"bedrock-login-server/internal/login"
	"bedrock-login-server/internal/packet"
	"bedrock-login-server/internal/protoerr"
)

// ProtocolVersion is the single protocol number this core speaks; it
// does not negotiate or support multiple versions simultaneously.
const ProtocolVersion uint32 = 475

const envelopeMagic byte = 0xFE

const deflateLevel = 7

// State is the per-session state machine tag. Transitions are total and
// explicit — no boolean flags.
type State int

const (
	// StateOpening: no cipher installed, awaiting Login.
	StateOpening State = iota
	// StateKeyExchanged: cipher installed, awaiting Client→Server Handshake.
	StateKeyExchanged
	// StateEncrypted: all subsequent I/O is ciphered.
	StateEncrypted
	// StateBad: terminal. Subsequent frames are ignored.
	StateBad
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "opening"
	case StateKeyExchanged:
		return "key_exchanged"
	case StateEncrypted:
		return "encrypted"
	case StateBad:
		return "bad"
	default:
		return "unknown"
	}
}

// SendFunc is the send primitive a Session is handed at construction —
// a closure over the shared RakNet socket bound to this session's peer
// address. It must not block longer than a single send.
type SendFunc func(data []byte) error

// Session is one connected peer. It owns an outbound byte queue and,
// once key exchange completes, the installed Cipher. The session holds
// only a handle to the send primitive, never a reference to the
// listener or to other sessions.
type Session struct {
	Addr string

	mu                sync.Mutex
	state             State
	cipherState       *cipher.Cipher
	encryptionEnabled bool
	queue             []byte
	send              SendFunc
	log               zerolog.Logger
	identity          *login.VerifyResult
}

// New constructs a fresh session in StateOpening for addr, sending
// through send, logging through log.
func New(addr string, send SendFunc, log zerolog.Logger) *Session {
	return &Session{
		Addr:  addr,
		state: StateOpening,
		send:  send,
		log:   log.With().Str("peer", addr).Logger(),
	}
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleDatagram runs the full receive pipeline over one datagram RakNet
// delivered for this peer: magic-byte check, optional decrypt+checksum,
// inflate, split, dispatch. Errors are handled internally — the session
// never panics or returns an error to the caller, matching the
// failure-isolation requirement that one bad peer cannot disturb
// another.
func (s *Session) HandleDatagram(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateBad {
		return
	}
	if len(data) == 0 || data[0] != envelopeMagic {
		s.log.Debug().Msg("dropping datagram with bad envelope magic")
		return
	}

	body := data[1:]
	if s.cipherState != nil {
		plain, err := s.cipherState.Decode(append([]byte(nil), body...))
		if err != nil {
			s.log.Warn().Err(err).Msg("bad packet, entering terminal state")
			s.state = StateBad
			return
		}
		body = plain
	}

	inflated, err := inflate(body)
	if err != nil {
		s.log.Debug().Err(err).Msg("dropping datagram, decompression failed")
		return
	}

	for _, inner := range splitFrames(inflated) {
		s.dispatch(inner)
	}
}

// splitFrames repeatedly reads a varu32 length then takes exactly that
// many bytes as one inner packet. If a declared length would overrun
// the remaining buffer, splitting stops silently rather than raising.
func splitFrames(buf []byte) [][]byte {
	var frames [][]byte
	r := codec.NewReader(buf)
	for r.Len() > 0 {
		n, err := r.ReadVarUint32()
		if err != nil {
			break
		}
		if int(n) > r.Len() {
			break
		}
		frame, err := r.ReadBytes(int(n))
		if err != nil {
			break
		}
		frames = append(frames, frame)
	}
	return frames
}

func inflate(compressed []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(compressed))
	defer fr.Close()
	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindMalformedEnvelope, "inflate failed", err)
	}
	return out, nil
}

func deflate(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, deflateLevel)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// dispatch decodes one inner packet's ID byte and routes it to the
// matching handler. An unrecognized ID is logged and dropped — it never
// disconnects the peer. A malformed body on a known ID disconnects the
// peer while login is in progress, otherwise is dropped.
func (s *Session) dispatch(body []byte) {
	if len(body) == 0 {
		return
	}
	id := body[0]

	switch id {
	case packet.IDLogin:
		var p packet.Login
		if err := packet.Decode(body, &p); err != nil {
			s.handleMalformed(err)
			return
		}
		s.handleLogin(&p)

	case packet.IDClientToServerHandshake:
		var p packet.ClientToServerHandshake
		if err := packet.Decode(body, &p); err != nil {
			s.handleMalformed(err)
			return
		}
		s.handleClientHandshake()

	case packet.IDResourcePackClientResp:
		var p packet.ResourcePackClientResponse
		if err := packet.Decode(body, &p); err != nil {
			s.handleMalformed(err)
			return
		}
		s.handleResourcePackResponse(&p)

	default:
		s.log.Debug().Uint8("packet_id", id).Msg("unknown packet id, dropping")
	}
}

func (s *Session) handleMalformed(err error) {
	s.log.Warn().Err(err).Str("state", s.state.String()).Msg("malformed packet body")
	if s.state != StateEncrypted {
		s.disconnectLocked("Malformed packet")
	}
}

// handleLogin runs the login flow: protocol check, chain verify, skin
// verify, key exchange, handshake send, cipher install.
func (s *Session) handleLogin(p *packet.Login) {
	if s.state != StateOpening {
		return
	}

	if p.ProtocolVersion != ProtocolVersion {
		s.log.Warn().Uint32("client_version", p.ProtocolVersion).Msg("protocol version mismatch")
		s.enqueueLocked(packet.Encode(&packet.PlayStatus{Status: packet.StatusFailedClient}))
		s.flushLocked()
		s.state = StateBad
		return
	}

	result, err := login.VerifyChain(p.Chain, s.log)
	if err != nil {
		s.log.Warn().Err(err).Msg("chain verification failed")
		s.disconnectLocked("Unexpected chain")
		return
	}

	if _, err := login.VerifySkin(p.PlayerData, result.IdentityKey); err != nil {
		s.log.Warn().Err(err).Msg("skin verification failed")
		s.disconnectLocked("Invalid player data")
		return
	}

	token, installed, err := login.Exchange(result.IdentityKey)
	if err != nil {
		s.log.Error().Err(err).Msg("key exchange failed")
		s.disconnectLocked("Internal error")
		return
	}

	// The handshake itself is the FIRST outbound packet and must be sent
	// unencrypted: the cipher is armed here but encryption_enabled only
	// flips on receipt of Client→Server Handshake.
	s.enqueueLocked(packet.Encode(&packet.ServerToClientHandshake{JWT: token}))
	s.flushLocked()

	s.identity = result
	s.cipherState = installed
	s.state = StateKeyExchanged
}

func (s *Session) handleClientHandshake() {
	if s.state != StateKeyExchanged {
		return
	}
	s.encryptionEnabled = true
	s.enqueueLocked(packet.Encode(&packet.PlayStatus{Status: packet.StatusLoginSuccess}))
	s.enqueueLocked(packet.Encode(&packet.ResourcePacksInfo{}))
	s.flushLocked()
	s.state = StateEncrypted
}

func (s *Session) handleResourcePackResponse(p *packet.ResourcePackClientResponse) {
	switch p.Status {
	case packet.PackResponseSendPacks:
		s.log.Info().Strs("pack_ids", p.PackIDs).Msg("client requested resource packs")
	case packet.PackResponseHaveAllPacks, packet.PackResponseCompleted:
		s.log.Info().Uint8("status", p.Status).Msg("resource pack negotiation complete")
	default:
		s.log.Debug().Uint8("status", p.Status).Msg("resource pack response")
	}
}

// enqueueLocked frames body as varu32-len‖body and appends it to the
// outbound queue. Caller must hold s.mu.
func (s *Session) enqueueLocked(body []byte) {
	w := codec.NewWriter()
	w.WriteVarUint32(uint32(len(body)))
	w.WriteBytes(body)
	s.queue = append(s.queue, w.Bytes()...)
}

// Flush drains the outbound queue: deflate, optional checksum+encrypt,
// envelope, send. The queue is cleared regardless of send outcome —
// delivery is best-effort, reliability belongs to RakNet.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Session) flushLocked() error {
	if len(s.queue) == 0 || s.state == StateBad {
		return nil
	}
	raw := s.queue
	s.queue = nil

	compressed, err := deflate(raw)
	if err != nil {
		return fmt.Errorf("session: deflate: %w", err)
	}

	wire := compressed
	if s.encryptionEnabled {
		wire = s.cipherState.Encode(compressed)
	}

	envelope := make([]byte, 0, len(wire)+1)
	envelope = append(envelope, envelopeMagic)
	envelope = append(envelope, wire...)

	return s.send(envelope)
}

func (s *Session) disconnectLocked(reason string) {
	s.enqueueLocked(packet.Encode(&packet.Disconnect{HideKickMessage: false, KickMessage: reason}))
	s.flushLocked()
	s.state = StateBad
}

// Disconnect marks the session bad and sends a final Disconnect packet,
// for use by the Listener when RakNet itself signals disconnection.
func (s *Session) Disconnect(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateBad {
		return
	}
	s.disconnectLocked(reason)
}
