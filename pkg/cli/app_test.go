package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	app := newApp()
	require.NotNil(t, app)
	assert.Equal(t, appName, app.Name)
	assert.NotEmpty(t, app.Commands)

	names := make(map[string]bool)
	for _, c := range app.Commands {
		names[c.Name] = true
	}
	for _, want := range []string{"import", "fetch", "query", "split", "train", "score"} {
		assert.True(t, names[want], "missing command: %s", want)
	}
}

func TestEncode(t *testing.T) {
	v := map[string]int{"a": 1}

	outputFormat = formatJSON
	assert.NoError(t, encode(v))

	outputFormat = formatYAML
	assert.NoError(t, encode(v))

	outputFormat = formatJSON
}
