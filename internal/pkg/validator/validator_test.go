package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t\n "))
	assert.False(t, IsBlank(" spam "))
}

func TestLengthBetween(t *testing.T) {
	assert.False(t, LengthBetween("spam", 5, 1000))
	assert.True(t, LengthBetween("  spam!  ", 5, 1000))
	// five runes, more than five bytes
	assert.True(t, LengthBetween("ñññññ", 5, 5))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"brakes", "engine"}, NormalizeTags([]string{" Brakes", "engine", "", "BRAKES"}))
	assert.Empty(t, NormalizeTags(nil))
}
