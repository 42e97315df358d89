package game

import "math/rand"

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// generateCode returns one random candidate room code. Uniqueness is
// the registry's job; it retries until the code is not live.
func generateCode(rng *rand.Rand) string {
	buf := make([]byte, codeLength)
	for i := range buf {
		buf[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
	}
	return string(buf)
}
