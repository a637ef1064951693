package analysis

import (
	"math"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var codec = sync.OnceValues(func() (tokenizer.Codec, error) {
	return tokenizer.Get(tokenizer.O200kBase)
})

// EstimateTokens approximates the prompt size of text for the named provider.
// Claude models tokenize roughly 20% denser than o200k, so Anthropic and
// Bedrock counts are scaled up.
func EstimateTokens(text, provider string) int {
	enc, err := codec()
	if err != nil {
		return len(text) / 4
	}
	n, err := enc.Count(text)
	if err != nil {
		return len(text) / 4
	}
	switch provider {
	case "anthropic", "bedrock":
		return int(math.Round(float64(n) * 1.2))
	default:
		return n
	}
}
