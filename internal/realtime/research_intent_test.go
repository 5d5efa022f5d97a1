package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasResearchIntentMatchesExpectedPhrases(t *testing.T) {
	assert.True(t, HasResearchIntent("Can you look up this pinout?"))
	assert.True(t, HasResearchIntent("Please search online for this board"))
	assert.True(t, HasResearchIntent("find datasheet for ads1015"))
	assert.True(t, HasResearchIntent("what does the datasheet say about gain"))
}

func TestHasResearchIntentIgnoresNonResearchRequests(t *testing.T) {
	assert.False(t, HasResearchIntent("hello theo"))
	assert.False(t, HasResearchIntent("tell me a joke"))
	assert.False(t, HasResearchIntent(""))
}
