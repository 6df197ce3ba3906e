// Package motd implements the fixed-schema, semicolon-delimited
// RakNet unconnected-ping advertisement string.
package motd

import "strconv"

// MOTD is the advertisement record. Round-trips through a single
// "MCPE;..." string; fields are not escaped, so values containing a
// semicolon will not round-trip exactly (lossy round-trip is accepted,
// per the design's contract — callers that need a guarantee should
// reject semicolons at construction).
type MOTD struct {
	Title           string
	ProtocolVersion uint16
	Version         string
	Online          uint32
	Max             uint32
	GUID            uint64
	SubTitle        string
	GameMode        string
}

// Format produces the "MCPE;title;protocol;version;online;max;guid;
// subtitle;gamemode" wire string.
func (m MOTD) Format() string {
	return "MCPE;" +
		m.Title + ";" +
		strconv.FormatUint(uint64(m.ProtocolVersion), 10) + ";" +
		m.Version + ";" +
		strconv.FormatUint(uint64(m.Online), 10) + ";" +
		strconv.FormatUint(uint64(m.Max), 10) + ";" +
		strconv.FormatUint(m.GUID, 10) + ";" +
		m.SubTitle + ";" +
		m.GameMode
}

// Parse splits s on ";", discards the leading literal "MCPE" field, and
// fills the remaining fields positionally. Missing trailing fields
// default to their zero value rather than erroring, numeric fields that
// do not parse are left at zero, and an empty string parses to a zero
// MOTD. The leading field is discarded without being checked.
func Parse(s string) MOTD {
	fields := splitSemicolon(s)

	var m MOTD
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	m.Title = get(1)
	if v, err := strconv.ParseUint(get(2), 10, 16); err == nil {
		m.ProtocolVersion = uint16(v)
	}
	m.Version = get(3)
	if v, err := strconv.ParseUint(get(4), 10, 32); err == nil {
		m.Online = uint32(v)
	}
	if v, err := strconv.ParseUint(get(5), 10, 32); err == nil {
		m.Max = uint32(v)
	}
	if v, err := strconv.ParseUint(get(6), 10, 64); err == nil {
		m.GUID = v
	}
	m.SubTitle = get(7)
	m.GameMode = get(8)

	return m
}

func splitSemicolon(s string) []string {
	var fields []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ';' {
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	fields = append(fields, s[start:])
	return fields
}
