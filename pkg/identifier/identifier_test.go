package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("alice@example.com"))
	assert.False(t, IsEmail("+254712345678"))
	assert.False(t, IsEmail("@example.com"))
	assert.False(t, IsEmail("alice@"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Alice", DisplayName("alice@example.com"))
	assert.Equal(t, "Alice Otieno", DisplayName("alice.otieno@example.com"))
	assert.Equal(t, "Jb Mwangi", DisplayName("jb_mwangi@example.com"))
	assert.Equal(t, "Sponsor", DisplayName("...@example.com"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "al***@example.com", Mask("alice@example.com"))
	assert.Equal(t, "***@x.io", Mask("ab@x.io"))
	assert.Equal(t, "+2547****678", Mask("+254712345678"))
	assert.Equal(t, "****", Mask("1234567"))
}
