package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 1, CountTokens(""))
	assert.Equal(t, 1, CountTokens("gas"))
	assert.Equal(t, 2, CountTokens("delivery"))
	assert.Equal(t, 4, CountTokens("Γεια σου"))
	assert.Equal(t, 3, CountTokens("450.50"))

	greek := strings.Repeat("παράδοση ", 100)
	latin := strings.Repeat("delivery ", 100)
	assert.Greater(t, CountTokens(greek), CountTokens(latin))
}
