package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMixCandidateLimit(t *testing.T) {
	assert.Equal(t, defaultMixCandidates, mixCandidateLimit(0),
		"an unspecified count widens to the mix-creation default")
	assert.Equal(t, defaultMixCandidates, mixCandidateLimit(-3))
	assert.Equal(t, 5, mixCandidateLimit(5))
}
