package rebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRebaseCommand(t *testing.T) {
	cmd := NewRebaseCommand()

	require.NotNil(t, cmd)

	assert.Equal(t, "rebase [new-base-dir]", cmd.Use)
	assert.True(t, cmd.HasExample())

	assert.Nil(t, cmd.Run)
	assert.NotNil(t, cmd.RunE)

	assert.NoError(t, cmd.Args(cmd, []string{}))
	assert.NoError(t, cmd.Args(cmd, []string{"dir"}))
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
}
