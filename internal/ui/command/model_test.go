package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	msg, ok := Parse("  Page 3 ")
	assert.True(t, ok)
	assert.Equal(t, Msg{Name: "page", Args: []string{"3"}}, msg)

	msg, ok = Parse("sync")
	assert.True(t, ok)
	assert.Equal(t, "sync", msg.Name)
	assert.Empty(t, msg.Args)

	_, ok = Parse("   ")
	assert.False(t, ok)
}
