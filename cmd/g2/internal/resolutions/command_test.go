package resolutions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g2-project/g2/pkg/skills"
)

func TestNewResolutionsCommand(t *testing.T) {
	cmd := NewResolutionsCommand()

	require.NotNil(t, cmd)
	assert.Equal(t, "resolutions", cmd.Use)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["save"])
	assert.True(t, names["load"])
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitNames("a, b"))
	assert.Equal(t, []string{"a"}, splitNames("a"))
	assert.Empty(t, splitNames(""))
}

func TestParseSource(t *testing.T) {
	assert.Equal(t, skills.ResolutionMaintainer, parseSource("maintainer"))
	assert.Equal(t, skills.ResolutionAssistant, parseSource("assistant"))
	assert.Equal(t, skills.ResolutionUser, parseSource("user"))
	assert.Equal(t, skills.ResolutionUser, parseSource("bogus"))
}

func TestSaveRequiresAtLeastOneFile(t *testing.T) {
	cmd := newSaveCommand()
	assert.Error(t, cmd.Args(cmd, []string{}))
	assert.NoError(t, cmd.Args(cmd, []string{"package.json"}))
}
