package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"table", "json", "yaml"} {
		f, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), f)
	}

	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatTable, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteObjectJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteObject(buf, FormatJSON, map[string]string{"uri": "dev:expt/trial-a"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"uri": "dev:expt/trial-a"`)
}

func TestWriteObjectYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteObject(buf, FormatYAML, map[string]string{"uri": "dev:expt/trial-a"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "uri: dev:expt/trial-a")
}

func TestWriteObjectTableRequiresFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteObject(buf, FormatTable, "anything")
	assert.Error(t, err)
}
