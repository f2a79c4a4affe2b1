package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	for _, action := range Actions() {
		parsed, err := ParseAction(action.String())
		require.NoError(t, err)
		assert.Equal(t, action, parsed)
		assert.True(t, parsed.Valid())
	}
}

func TestParseAction_Invalid(t *testing.T) {
	for _, name := range []string{"fly", "", "Lecture", "office_hours", "BREAK"} {
		_, err := ParseAction(name)
		assert.ErrorIs(t, err, ErrInvalidAction, "name=%q", name)
	}
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "officeHours", ActionOfficeHours.String())
	assert.Equal(t, "useAI", ActionUseAI.String())
	assert.Equal(t, "Action(0)", Action(0).String())
	assert.False(t, Action(0).Valid())
}
