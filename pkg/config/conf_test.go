package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig(t *testing.T) {
	dir := t.TempDir()

	c1, err := ReadOrCreate(dir)
	assert.NoError(t, err)
	assert.NotNil(t, c1)
	assert.Equal(t, 8.5, c1.InterfaceCutoff)

	c1.InterfaceCutoff = 10.0
	c1.Workers = 4
	c1.Model.Epochs = 100

	err = Save(dir, c1)
	assert.NoError(t, err)

	c2, err := ReadOrCreate(dir)
	assert.NoError(t, err)
	assert.NotNil(t, c2)
	assert.Equal(t, c1.InterfaceCutoff, c2.InterfaceCutoff)
	assert.Equal(t, c1.Workers, c2.Workers)
	assert.Equal(t, c1.Model.Epochs, c2.Model.Epochs)
}

func TestConfigErrors(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)

	err = Save("", getDefaultConfig())
	assert.Error(t, err)

	err = Save(t.TempDir(), nil)
	assert.Error(t, err)
}
