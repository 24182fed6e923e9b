package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceRejectsNegative(t *testing.T) {
	_, err := parsePrice("-5")
	assert.Error(t, err)
}

func TestParsePriceAcceptsNonNegative(t *testing.T) {
	p, err := parsePrice("100")
	require.NoError(t, err)
	assert.EqualValues(t, 100, p)
}
