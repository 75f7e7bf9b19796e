package libffm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Token 是一个 field:feature:value 三元组。
type Token struct {
	Field   int
	Feature int
	Value   float64
}

// Sample 是 libffm 文本中的一行。
type Sample struct {
	Label  float64
	Tokens []Token
}

// ParseLine 解析一行 libffm 文本：label field:feature:value ...
func ParseLine(line string) (*Sample, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty line")
	}

	label, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid label %q: %v", parts[0], err)
	}
	s := &Sample{Label: label, Tokens: make([]Token, 0, len(parts)-1)}
	for _, p := range parts[1:] {
		kv := strings.Split(p, ":")
		if len(kv) != 3 {
			return nil, fmt.Errorf("invalid token format: %s", p)
		}
		field, err := strconv.Atoi(kv[0])
		if err != nil || field <= 0 {
			return nil, fmt.Errorf("invalid field index in token %s", p)
		}
		feature, err := strconv.Atoi(kv[1])
		if err != nil || feature <= 0 {
			return nil, fmt.Errorf("invalid feature index in token %s", p)
		}
		value, err := strconv.ParseFloat(kv[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid feature value in token %s: %v", p, err)
		}
		s.Tokens = append(s.Tokens, Token{Field: field, Feature: feature, Value: value})
	}
	return s, nil
}

// ReadSamples 逐行解析，空行跳过，出错时带上行号。
func ReadSamples(r io.Reader) ([]*Sample, error) {
	var samples []*Sample
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
