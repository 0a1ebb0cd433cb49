package service

import (
	"errors"
	"regexp"
	"strings"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ReasoningContentExtractor reads answers of reasoning models (NVIDIA-hosted
// DeepSeek, sonar-reasoning), which may prefix the answer with a
// <think>...</think> block. Separate reasoning_content is ignored.
type ReasoningContentExtractor struct{}

// Content returns the first choice's content with thinking removed
func (e *ReasoningContentExtractor) Content(resp *ChatCompletionResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	content := thinkBlock.ReplaceAllString(resp.Choices[0].Message.Content, "")
	// unterminated block: the answer was cut off mid-thought
	if strings.Contains(content, "<think>") {
		return "", errors.New("response ended inside a thinking block")
	}
	return strings.TrimSpace(content), nil
}

// IsReasoningProvider checks for the NVIDIA API or a model name that
// announces reasoning output
func IsReasoningProvider(apiURL, model string) bool {
	if strings.Contains(apiURL, "integrate.api.nvidia.com") {
		return true
	}
	m := strings.ToLower(model)
	return strings.Contains(m, "reasoning") || strings.Contains(m, "deepseek-r1")
}
