package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fencedJSON     = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	trailingCommas = regexp.MustCompile(`,\s*([}\]])`)
	bareKeys       = regexp.MustCompile(`([{,]\s*)([A-Za-z_]\w*)(\s*:)`)
	controlChars   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseStrictJSON decodes model output that must be a single JSON document
func ParseStrictJSON(input string, target interface{}) error {
	input = strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if input == "" {
		return fmt.Errorf("empty input")
	}
	if err := json.Unmarshal([]byte(input), target); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// ParseAIJSON decodes a JSON object from model output that may wrap it in a
// markdown fence or prose, or carry trailing commas and unquoted keys.
// Candidates are tried in order and the first that decodes wins.
func ParseAIJSON(input string, target interface{}) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty input")
	}

	candidates := []func(string) string{
		strings.TrimSpace,
		fromMarkdown,
		fromText,
		func(s string) string { return repairJSON(fromText(s)) },
		repairJSON,
	}

	for _, extract := range candidates {
		candidate := extract(input)
		if candidate == "" {
			continue
		}
		if err := json.Unmarshal([]byte(candidate), target); err == nil {
			return nil
		}
	}

	return fmt.Errorf("failed to parse JSON from input: %s", truncateString(input, 100))
}

// fromMarkdown returns the body of the first fenced block that looks like an object
func fromMarkdown(input string) string {
	m := fencedJSON.FindStringSubmatch(input)
	if len(m) < 2 {
		return ""
	}
	body := strings.TrimSpace(m[1])
	if !strings.HasPrefix(body, "{") {
		return ""
	}
	return body
}

// fromText returns the first balanced {...} object in the input
func fromText(input string) string {
	start := strings.Index(input, "{")
	if start < 0 {
		return ""
	}
	return balancedObject(input[start:])
}

// balancedObject scans from an opening brace to its matching close,
// ignoring braces inside string literals
func balancedObject(input string) string {
	depth := 0
	inString := false
	escape := false

	for i, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return input[:i+1]
			}
		}
	}

	return ""
}

// repairJSON fixes the mistakes models commonly make when hand-writing JSON
func repairJSON(input string) string {
	s := strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
	if s == "" {
		return ""
	}
	s = trailingCommas.ReplaceAllString(s, "$1")
	s = bareKeys.ReplaceAllString(s, `$1"$2"$3`)
	s = fixSingleQuotes(s)
	return controlChars.ReplaceAllString(s, "")
}

// fixSingleQuotes turns single-quoted strings into double-quoted ones,
// leaving apostrophes inside double-quoted strings alone
func fixSingleQuotes(input string) string {
	var b strings.Builder
	inDouble, inSingle, escape := false, false, false
	prev := rune(0)

	for _, ch := range input {
		switch {
		case escape:
			escape = false
		case ch == '\\':
			escape = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			if inSingle {
				inSingle = false
				ch = '"'
			} else if prev == 0 || strings.ContainsRune(":,[{", prev) {
				inSingle = true
				ch = '"'
			}
		}
		b.WriteRune(ch)
		if ch != ' ' && ch != '\n' && ch != '\t' {
			prev = ch
		}
	}

	return b.String()
}

// truncateString truncates a string to maxLen bytes
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
