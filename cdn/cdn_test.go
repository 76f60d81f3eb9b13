package cdn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURLRoundtrip(t *testing.T) {
	assert := assert.New(t)
	s := &Store{publicBase: "https://cdn.example.com"}

	url := s.PublicURL("gradients/abc.png")
	assert.Equal("https://cdn.example.com/gradients/abc.png", url)

	key, ok := s.KeyFromURL(url)
	assert.True(ok)
	assert.Equal("gradients/abc.png", key)
}

func TestKeyFromURLForeignOrigin(t *testing.T) {
	s := &Store{publicBase: "https://cdn.example.com"}

	_, ok := s.KeyFromURL("https://elsewhere.example.com/gradients/abc.png")
	assert.False(t, ok)

	_, ok = s.KeyFromURL("https://cdn.example.com.evil.com/gradients/abc.png")
	assert.False(t, ok)
}
