package packet

import "bedrock-login-server/internal/codec"

// ResourcePackEntry describes one behavior or texture pack advertised by
// ResourcePacksInfo or named in a ResourcePackStack entry.
type ResourcePackEntry struct {
	UUID             string
	Version          string
	Size             uint64 // bytes; little-endian on the wire
	ContentKey       string
	SubPackName      string
	ContentIdentity  string
	HasScripts       bool
	IsAddonPack      bool
}

func writeResourcePackEntry(w *codec.Writer, e ResourcePackEntry) {
	w.WriteString(e.UUID)
	w.WriteString(e.Version)
	w.WriteUint64LE(e.Size)
	w.WriteString(e.ContentKey)
	w.WriteString(e.SubPackName)
	w.WriteString(e.ContentIdentity)
	w.WriteBool(e.HasScripts)
	w.WriteBool(e.IsAddonPack)
}

func readResourcePackEntry(r *codec.Reader) (ResourcePackEntry, error) {
	var e ResourcePackEntry
	var err error
	if e.UUID, err = r.ReadString(); err != nil {
		return e, err
	}
	if e.Version, err = r.ReadString(); err != nil {
		return e, err
	}
	if e.Size, err = r.ReadUint64LE(); err != nil {
		return e, err
	}
	if e.ContentKey, err = r.ReadString(); err != nil {
		return e, err
	}
	if e.SubPackName, err = r.ReadString(); err != nil {
		return e, err
	}
	if e.ContentIdentity, err = r.ReadString(); err != nil {
		return e, err
	}
	if e.HasScripts, err = r.ReadBool(); err != nil {
		return e, err
	}
	if e.IsAddonPack, err = r.ReadBool(); err != nil {
		return e, err
	}
	return e, nil
}

// ResourcePacksInfo (0x06, outbound): the three acceptance flags
// followed by the behavior and texture pack lists. Per-pack bodies are
// only present when the corresponding count is nonzero.
type ResourcePacksInfo struct {
	ForceAccept      bool
	HasScript        bool
	ForceServerPacks bool
	Behavior         []ResourcePackEntry
	Texture          []ResourcePackEntry
}

func (p *ResourcePacksInfo) ID() byte { return IDResourcePacksInfo }

func (p *ResourcePacksInfo) Write(w *codec.Writer) {
	w.WriteBool(p.ForceAccept)
	w.WriteBool(p.HasScript)
	w.WriteBool(p.ForceServerPacks)
	// Legacy varu32 field kept for wire compatibility; always 4, per the
	// original implementation's fixed constant.
	w.WriteVarUint32(4)
	w.WriteUint16BE(uint16(len(p.Behavior)))
	for _, e := range p.Behavior {
		writeResourcePackEntry(w, e)
	}
	w.WriteUint16BE(uint16(len(p.Texture)))
	for _, e := range p.Texture {
		writeResourcePackEntry(w, e)
	}
}

func (p *ResourcePacksInfo) Read(r *codec.Reader) error {
	var err error
	if p.ForceAccept, err = r.ReadBool(); err != nil {
		return err
	}
	if p.HasScript, err = r.ReadBool(); err != nil {
		return err
	}
	if p.ForceServerPacks, err = r.ReadBool(); err != nil {
		return err
	}
	if _, err = r.ReadVarUint32(); err != nil {
		return err
	}
	behaviorCount, err := r.ReadUint16BE()
	if err != nil {
		return err
	}
	p.Behavior = make([]ResourcePackEntry, behaviorCount)
	for i := range p.Behavior {
		if p.Behavior[i], err = readResourcePackEntry(r); err != nil {
			return err
		}
	}
	textureCount, err := r.ReadUint16BE()
	if err != nil {
		return err
	}
	p.Texture = make([]ResourcePackEntry, textureCount)
	for i := range p.Texture {
		if p.Texture[i], err = readResourcePackEntry(r); err != nil {
			return err
		}
	}
	return nil
}

// ResourcePackStackEntry is the abbreviated triple a ResourcePackStack
// lists for each pack, once the client has been told it exists by
// ResourcePacksInfo.
type ResourcePackStackEntry struct {
	UUID        string
	Version     string
	SubPackName string
}

// ResourcePackStack (0x07, outbound): the ordered pack application order
// the client must follow, plus whether accepting it is mandatory.
type ResourcePackStack struct {
	MustAccept   bool
	Behavior     []ResourcePackStackEntry
	Texture      []ResourcePackStackEntry
	GameVersion  string
	Experimental bool
}

func (p *ResourcePackStack) ID() byte { return IDResourcePackStack }

func writeStackEntries(w *codec.Writer, entries []ResourcePackStackEntry) {
	w.WriteVarUint32(uint32(len(entries)))
	for _, e := range entries {
		w.WriteString(e.UUID)
		w.WriteString(e.Version)
		w.WriteString(e.SubPackName)
	}
}

func readStackEntries(r *codec.Reader) ([]ResourcePackStackEntry, error) {
	count, err := r.ReadVarUint32()
	if err != nil {
		return nil, err
	}
	entries := make([]ResourcePackStackEntry, count)
	for i := range entries {
		if entries[i].UUID, err = r.ReadString(); err != nil {
			return nil, err
		}
		if entries[i].Version, err = r.ReadString(); err != nil {
			return nil, err
		}
		if entries[i].SubPackName, err = r.ReadString(); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (p *ResourcePackStack) Write(w *codec.Writer) {
	w.WriteBool(p.MustAccept)
	writeStackEntries(w, p.Behavior)
	writeStackEntries(w, p.Texture)
	w.WriteString(p.GameVersion)
	w.WriteBool(p.Experimental)
}

func (p *ResourcePackStack) Read(r *codec.Reader) error {
	var err error
	if p.MustAccept, err = r.ReadBool(); err != nil {
		return err
	}
	if p.Behavior, err = readStackEntries(r); err != nil {
		return err
	}
	if p.Texture, err = readStackEntries(r); err != nil {
		return err
	}
	if p.GameVersion, err = r.ReadString(); err != nil {
		return err
	}
	if p.Experimental, err = r.ReadBool(); err != nil {
		return err
	}
	return nil
}

// Resource-pack client response status codes.
const (
	PackResponseRefused      uint8 = 0
	PackResponseSendPacks    uint8 = 1
	PackResponseHaveAllPacks uint8 = 2
	PackResponseCompleted    uint8 = 3
)

// ResourcePackClientResponse (0x08, inbound): the client's reaction to
// ResourcePacksInfo/ResourcePackStack. When status is PackResponseSendPacks
// it additionally lists the pack ids the client wants streamed — chunked
// pack delivery itself is gameplay-adjacent and out of scope; the core
// only records which ids were requested.
type ResourcePackClientResponse struct {
	Status     uint8
	PackIDs    []string
}

func (p *ResourcePackClientResponse) ID() byte { return IDResourcePackClientResp }

func (p *ResourcePackClientResponse) Write(w *codec.Writer) {
	w.WriteUint8(p.Status)
	if p.Status == PackResponseSendPacks {
		w.WriteVarUint32(uint32(len(p.PackIDs)))
		for _, id := range p.PackIDs {
			w.WriteString(id)
		}
	}
}

func (p *ResourcePackClientResponse) Read(r *codec.Reader) error {
	status, err := r.ReadUint8()
	if err != nil {
		return err
	}
	p.Status = status
	if status != PackResponseSendPacks {
		return nil
	}
	count, err := r.ReadVarUint32()
	if err != nil {
		return err
	}
	p.PackIDs = make([]string, count)
	for i := range p.PackIDs {
		if p.PackIDs[i], err = r.ReadString(); err != nil {
			return err
		}
	}
	return nil
}
