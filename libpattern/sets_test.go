package libpattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicSet(t *testing.T) {
	set := NewCanonicSet()
	defer set.Close()

	code := []byte{5, 96}
	assert.True(t, set.TryAdd(code))
	assert.False(t, set.TryAdd([]byte{5, 96}))

	// The set keeps its own copy
	code[1] = 112
	assert.False(t, set.TryAdd([]byte{5, 96}))
	assert.True(t, set.TryAdd(code))
	assert.Equal(t, 2, set.Len())

	set.Close()
	assert.Equal(t, 0, set.Len())
	assert.True(t, set.TryAdd([]byte{5, 96}))
}
