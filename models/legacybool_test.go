package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyBoolUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr bool
	}{
		{name: "real true", input: `true`, want: true},
		{name: "real false", input: `false`, want: false},
		{name: "string true", input: `"true"`, want: true},
		{name: "string false", input: `"false"`, want: false},
		{name: "string TRUE uppercase", input: `"TRUE"`, want: true},
		{name: "string one", input: `"1"`, want: true},
		{name: "string zero", input: `"0"`, want: false},
		{name: "empty string", input: `""`, want: false},
		{name: "number one", input: `1`, want: true},
		{name: "number zero", input: `0`, want: false},
		{name: "null", input: `null`, want: false},
		{name: "garbage string", input: `"maybe"`, wantErr: true},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b LegacyBool
			err := json.Unmarshal([]byte(tt.input), &b)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.Bool())
		})
	}
}

func TestLegacyBoolScan(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{name: "bool", input: true, want: true},
		{name: "text true", input: "true", want: true},
		{name: "text false", input: "false", want: false},
		{name: "bytes", input: []byte("true"), want: true},
		{name: "int64 one", input: int64(1), want: true},
		{name: "nil column", input: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b LegacyBool
			require.NoError(t, b.Scan(tt.input))
			assert.Equal(t, tt.want, b.Bool())
		})
	}
}

func TestLegacyBoolMarshalAlwaysRealBool(t *testing.T) {
	// Whatever shape the value came in as, it leaves as a real boolean.
	var b LegacyBool
	require.NoError(t, json.Unmarshal([]byte(`"true"`), &b))

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `true`, string(out))
}

func TestNotificationUnmarshalLegacyShapes(t *testing.T) {
	// Legacy store rows carried string-typed booleans; modern rows carry
	// real ones. Both decode into the same typed model.
	legacy := []byte(`{"id":"n_1","acknowledged":"true","read":"false"}`)
	modern := []byte(`{"id":"n_2","acknowledged":true,"read":false}`)

	var legacyNotif, modernNotif Notification
	require.NoError(t, json.Unmarshal(legacy, &legacyNotif))
	require.NoError(t, json.Unmarshal(modern, &modernNotif))

	assert.Equal(t, legacyNotif.Acknowledged, modernNotif.Acknowledged)
	assert.Equal(t, legacyNotif.Read, modernNotif.Read)
}
