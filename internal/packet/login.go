package packet

import "bedrock-login-server/internal/codec"

// Login (0x01, inbound only): the client's identity chain and
// player-data JWT, plus the protocol version it speaks.
type Login struct {
	ProtocolVersion uint32
	Chain           string // raw `{"chain": [...]}` JSON
	PlayerData      string // raw ES384 JWT
}

func (p *Login) ID() byte { return IDLogin }

func (p *Login) Write(w *codec.Writer) {
	// Outbound encoding is not exercised: Login is inbound-only on the
	// wire, but Write exists so Login satisfies Packet symmetrically.
	w.WriteUint32BE(p.ProtocolVersion)
	w.WriteVarUint32(0)
	w.WriteString(p.Chain)
	w.WriteString(p.PlayerData)
}

func (p *Login) Read(r *codec.Reader) error {
	version, err := r.ReadUint32BE()
	if err != nil {
		return err
	}
	// data_length: the combined byte length of the two strings that
	// follow. The core doesn't need it to parse them (they're each
	// length-prefixed) so it's read and discarded.
	if _, err := r.ReadVarUint32(); err != nil {
		return err
	}
	chain, err := r.ReadString()
	if err != nil {
		return err
	}
	playerData, err := r.ReadString()
	if err != nil {
		return err
	}
	p.ProtocolVersion = version
	p.Chain = chain
	p.PlayerData = playerData
	return nil
}
