package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"bedrock-login-server/internal/config"
	"bedrock-login-server/internal/listener"
)

// udpRakNet is the bare-minimum listener.RakNet implementation the CLI
// wires up to actually run. It is deliberately NOT a real RakNet stack:
// no reliability, ordering, or unconnected-ping handshake — those are
// the external collaborator's job per the design, and a production
// deployment would swap this for an actual RakNet library. It exists so
// the login core has somewhere real to read datagrams from and write
// them to.
type udpRakNet struct {
	conn *net.UDPConn
	guid uint64

	mu     sync.Mutex
	seen   map[string]bool
	addrs  map[string]*net.UDPAddr
	events []listener.Event
	motd   string
}

func newRakNetCollaborator(cfg *config.Config, log zerolog.Logger) (*udpRakNet, error) {
	addr, err := net.ResolveUDPAddr("udp", cfg.BindAddress)
	if err != nil {
		return nil, fmt.Errorf("raknet: resolve %s: %w", cfg.BindAddress, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("raknet: listen %s: %w", cfg.BindAddress, err)
	}

	r := &udpRakNet{
		conn:  conn,
		guid:  randomGUID(),
		seen:  make(map[string]bool),
		addrs: make(map[string]*net.UDPAddr),
	}
	go r.readLoop(log)
	return r, nil
}

func randomGUID() uint64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint64(b[:])
}

func (r *udpRakNet) readLoop(log zerolog.Logger) {
	buf := make([]byte, 1500)
	for {
		n, addr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			log.Warn().Err(err).Msg("raknet: read loop exiting")
			return
		}
		data := append([]byte(nil), buf[:n]...)
		key := addr.String()

		r.mu.Lock()
		if !r.seen[key] {
			r.seen[key] = true
			r.addrs[key] = addr
			r.events = append(r.events, listener.Event{Kind: listener.EventConnected, Addr: key, GUID: r.guid})
		}
		r.events = append(r.events, listener.Event{Kind: listener.EventPacket, Addr: key, Data: data})
		r.mu.Unlock()
	}
}

func (r *udpRakNet) Poll() []listener.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

func (r *udpRakNet) SendTo(addrStr string, data []byte) error {
	r.mu.Lock()
	addr := r.addrs[addrStr]
	r.mu.Unlock()
	if addr == nil {
		return fmt.Errorf("raknet: unknown peer %s", addrStr)
	}
	_, err := r.conn.WriteToUDP(data, addr)
	return err
}

func (r *udpRakNet) SetMOTD(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.motd = s
}

func (r *udpRakNet) GUID() uint64 { return r.guid }
