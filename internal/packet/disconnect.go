package packet

import "bedrock-login-server/internal/codec"

// Disconnect (0x05): a hide-kick-message flag and the kick message text.
type Disconnect struct {
	HideKickMessage bool
	KickMessage     string
}

func (p *Disconnect) ID() byte { return IDDisconnect }

func (p *Disconnect) Write(w *codec.Writer) {
	w.WriteBool(p.HideKickMessage)
	w.WriteString(p.KickMessage)
}

func (p *Disconnect) Read(r *codec.Reader) error {
	hide, err := r.ReadBool()
	if err != nil {
		return err
	}
	msg, err := r.ReadString()
	if err != nil {
		return err
	}
	p.HideKickMessage = hide
	p.KickMessage = msg
	return nil
}
