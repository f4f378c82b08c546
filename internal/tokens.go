package internal

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

const (
	tokensPerMessage = 3
	tokensReplyPrime = 3
)

// PromptTokenCounter estimates the prompt tokens a request will be billed for.
// The estimate is local and informational; provider usage stays authoritative.
type PromptTokenCounter struct {
	once  sync.Once
	codec tokenizer.Codec
	err   error
}

// NewPromptTokenCounter creates a counter; the encoding is loaded lazily
func NewPromptTokenCounter() *PromptTokenCounter {
	return &PromptTokenCounter{}
}

func (c *PromptTokenCounter) load() error {
	c.once.Do(func() {
		c.codec, c.err = tokenizer.Get(tokenizer.O200kBase)
		if c.err != nil {
			c.codec, c.err = tokenizer.Get(tokenizer.Cl100kBase)
		}
	})
	return c.err
}

// CountText returns the token count of a single string
func (c *PromptTokenCounter) CountText(text string) (int, error) {
	if err := c.load(); err != nil {
		return 0, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	ids, _, err := c.codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("failed to encode text: %w", err)
	}
	return len(ids), nil
}

// CountMessages estimates the prompt tokens of a chat request
func (c *PromptTokenCounter) CountMessages(messages []Message) (int, error) {
	total := tokensReplyPrime
	for _, m := range messages {
		n, err := c.CountText(m.Content)
		if err != nil {
			return 0, err
		}
		total += tokensPerMessage + n
	}
	return total, nil
}
