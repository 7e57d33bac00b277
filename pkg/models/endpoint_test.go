package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProtocol(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Protocol
		wantErr bool
	}{
		{name: "tcp lower case", input: "tcp", want: ProtocolTCP},
		{name: "udp upper case", input: "UDP", want: ProtocolUDP},
		{name: "mixed case", input: "Tcp", want: ProtocolTCP},
		{name: "unknown protocol", input: "icmp", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProtocol(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEndpointKey(t *testing.T) {
	e := Endpoint{Name: "db", Host: "10.0.0.5", Port: 5432, Protocol: ProtocolTCP}

	assert.Equal(t, "10.0.0.5:5432/tcp", e.Key())
	assert.Equal(t, "10.0.0.5:5432", e.Addr())

	// Name is a label, not identity.
	renamed := e
	renamed.Name = "replica"
	assert.Equal(t, e.Key(), renamed.Key())
}

func TestEndpointKeyIPv6(t *testing.T) {
	e := Endpoint{Host: "::1", Port: 53, Protocol: ProtocolUDP}

	assert.Equal(t, "[::1]:53/udp", e.Key())
}

func TestEndpointString(t *testing.T) {
	named := Endpoint{Name: "db", Host: "localhost", Port: 5432, Protocol: ProtocolTCP}
	assert.Equal(t, "db (localhost:5432/tcp)", named.String())

	unnamed := Endpoint{Host: "localhost", Port: 5432, Protocol: ProtocolTCP}
	assert.Equal(t, "localhost:5432/tcp", unnamed.String())
}

func TestStatusFromReachable(t *testing.T) {
	assert.Equal(t, StatusUp, StatusFromReachable(true))
	assert.Equal(t, StatusDown, StatusFromReachable(false))
}
