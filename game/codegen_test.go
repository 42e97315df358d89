package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode_Format(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		assert.Regexp(t, codeFormat, generateCode(rng))
	}
}
