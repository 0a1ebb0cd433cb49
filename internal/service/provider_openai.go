package service

import (
	"errors"
	"strings"
)

// OpenAIContentExtractor reads the answer of standard OpenAI-format responses
type OpenAIContentExtractor struct{}

// Content returns the first choice's message content
func (e *OpenAIContentExtractor) Content(resp *ChatCompletionResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

// IsOpenAIProvider checks if the URL is the official OpenAI API
func IsOpenAIProvider(apiURL string) bool {
	return strings.Contains(apiURL, "api.openai.com")
}
