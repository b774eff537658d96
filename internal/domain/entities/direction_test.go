package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirection_IsValid(t *testing.T) {
	assert.True(t, DirectionFactIsSource.IsValid())
	assert.True(t, DirectionFactIsDestination.IsValid())
	assert.True(t, DirectionBiDirectional.IsValid())

	assert.False(t, Direction("").IsValid())
	assert.False(t, Direction("Bidirectional").IsValid())
	assert.False(t, Direction("factissource").IsValid())
}

func TestAccessMode_IsValid(t *testing.T) {
	assert.True(t, AccessModePublic.IsValid())
	assert.True(t, AccessModeRoleBased.IsValid())
	assert.True(t, AccessModeExplicit.IsValid())

	assert.False(t, AccessMode("").IsValid())
	assert.False(t, AccessMode("private").IsValid())
}

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, "evil.example.com", NormalizeValue("  EVIL.Example.COM  "))
	assert.Equal(t, "apt-99", NormalizeValue("APT-99"))
}
