package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://eve.example.org/docs/tutorials.js"))
	assert.True(t, IsValidURL("http://127.0.0.1:8080/nav.json"))
	assert.False(t, IsValidURL("docs/tutorials.js"))
	assert.False(t, IsValidURL("file:///tmp/tutorials.js"))
	assert.False(t, IsValidURL("http://"))
	assert.False(t, IsValidURL("://broken"))
}
