package initcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInitCommand(t *testing.T) {
	cmd := NewInitCommand()

	require.NotNil(t, cmd)

	assert.Equal(t, "init", cmd.Use)
	assert.True(t, cmd.HasExample())

	assert.Nil(t, cmd.Run)
	assert.NotNil(t, cmd.RunE)

	assert.NotNil(t, cmd.Flags().Lookup("core-version"))
}
