package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(-1)) // debug

	log, err = New(Config{Level: "warn", Development: true})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(0)) // info filtered at warn
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNopAndNamed(t *testing.T) {
	log := Nop()
	require.NotNil(t, log)

	child := log.Named("engine")
	require.NotNil(t, child)
	child.Info("discarded")
}
