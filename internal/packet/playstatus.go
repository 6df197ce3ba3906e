package packet

import (
	"fmt"

	"bedrock-login-server/internal/codec"
)

// PlayStatus status codes.
const (
	StatusLoginSuccess       int32 = 0
	StatusFailedClient       int32 = 1
	StatusFailedServer       int32 = 2
	StatusPlayerSpawn        int32 = 3
	StatusFailedInvalidTenant int32 = 4
	StatusFailedVanillaEdu   int32 = 5
	StatusFailedEduVanilla   int32 = 6
	StatusFailedServerFull   int32 = 7
)

// PlayStatus (0x02, outbound): a single i32 status code.
type PlayStatus struct {
	Status int32
}

func (p *PlayStatus) ID() byte { return IDPlayStatus }

func (p *PlayStatus) Write(w *codec.Writer) {
	w.WriteInt32BE(p.Status)
}

func (p *PlayStatus) Read(r *codec.Reader) error {
	status, err := r.ReadInt32BE()
	if err != nil {
		return err
	}
	switch status {
	case StatusLoginSuccess, StatusFailedClient, StatusFailedServer, StatusPlayerSpawn,
		StatusFailedInvalidTenant, StatusFailedVanillaEdu, StatusFailedEduVanilla, StatusFailedServerFull:
		p.Status = status
		return nil
	default:
		return fmt.Errorf("packet: unknown play status %d", status)
	}
}
