// Package embedding derives deterministic local embedding vectors for
// identity documents. The vectors stand in for a real embedding model and
// only need to be stable for a given input.
package embedding

import "crypto/sha256"

// Embed maps text to a fixed-length vector with components in [0, 1].
// The digest bytes are cycled to fill the requested dimensionality.
func Embed(text string, dimensions int) []float64 {
	if dimensions <= 0 {
		return nil
	}
	digest := sha256.Sum256([]byte(text))
	vector := make([]float64, dimensions)
	for i := range vector {
		vector[i] = float64(digest[i%len(digest)]) / 255.0
	}
	return vector
}
