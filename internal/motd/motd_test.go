package motd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatParseRoundTrip(t *testing.T) {
	m := MOTD{
		Title:           "My Server",
		ProtocolVersion: 475,
		Version:         "1.20.0",
		Online:          3,
		Max:             20,
		GUID:            123456789,
		SubTitle:        "Bedrock Login",
		GameMode:        "Survival",
	}
	parsed := Parse(m.Format())
	require.Equal(t, m, parsed)
}

// TestSectionSignTitleRoundTrip pins the exact formatted MOTD for a known
// server identity with a §-formatted title, the literal string two RakNet
// peers must agree on byte for byte during an unconnected ping exchange,
// and checks that it parses back to the same record.
func TestSectionSignTitleRoundTrip(t *testing.T) {
	m := MOTD{
		Title:           "§bBedrock Login§r",
		ProtocolVersion: 475,
		Version:         "1.20.0",
		Online:          0,
		Max:             20,
		GUID:            1,
		SubTitle:        "Core",
		GameMode:        "Survival",
	}
	want := "MCPE;§bBedrock Login§r;475;1.20.0;0;20;1;Core;Survival"
	require.Equal(t, want, m.Format())
	require.Equal(t, m, Parse(want))
}

func TestParseMissingTrailingFieldsDefault(t *testing.T) {
	parsed := Parse("MCPE;OnlyTitle")
	require.Equal(t, "OnlyTitle", parsed.Title)
	require.Equal(t, uint16(0), parsed.ProtocolVersion)
	require.Equal(t, "", parsed.Version)
	require.Equal(t, uint32(0), parsed.Online)
}

func TestParseEmptyString(t *testing.T) {
	parsed := Parse("")
	require.Equal(t, MOTD{}, parsed)
}
