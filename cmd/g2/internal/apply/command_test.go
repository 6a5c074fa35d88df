package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g2-project/g2/pkg/skills"
)

func TestNewApplyCommand(t *testing.T) {
	cmd := NewApplyCommand()

	require.NotNil(t, cmd)

	assert.Equal(t, "apply <skill-dir>", cmd.Use)
	assert.True(t, cmd.HasExample())

	assert.Nil(t, cmd.Run)
	assert.NotNil(t, cmd.RunE)

	assert.Error(t, cmd.Args(cmd, []string{}))
	assert.NoError(t, cmd.Args(cmd, []string{"dir"}))
}

func TestMergeGlyph(t *testing.T) {
	assert.NotEmpty(t, mergeGlyph(skills.MergeClean))
	assert.NotEmpty(t, mergeGlyph(skills.MergeConflict))
}
