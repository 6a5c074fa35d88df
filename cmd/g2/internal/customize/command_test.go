package customize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomizeCommand(t *testing.T) {
	cmd := NewCustomizeCommand()

	require.NotNil(t, cmd)
	assert.Equal(t, "customize", cmd.Use)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["start"])
	assert.True(t, names["commit"])
	assert.True(t, names["abort"])
}

func TestStartRequiresDescription(t *testing.T) {
	cmd := newStartCommand()
	assert.Error(t, cmd.Args(cmd, []string{}))
	assert.NoError(t, cmd.Args(cmd, []string{"a change"}))
}
