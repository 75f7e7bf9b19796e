package libffm

import (
	"strings"
	"testing"
)

func TestParseLine(t *testing.T) {
	s, err := ParseLine("4.0 1:12:1 2:2:0.5 3:3:1e-05")
	if err != nil {
		t.Fatalf("ParseLine() error = %v", err)
	}
	if s.Label != 4 || len(s.Tokens) != 3 {
		t.Fatalf("ParseLine() = %+v", s)
	}
	if s.Tokens[0] != (Token{Field: 1, Feature: 12, Value: 1}) {
		t.Errorf("Tokens[0] = %+v", s.Tokens[0])
	}
	if s.Tokens[2].Value != 1e-05 {
		t.Errorf("Tokens[2].Value = %v", s.Tokens[2].Value)
	}
}

func TestParseLine_Errors(t *testing.T) {
	for _, line := range []string{
		"",
		"x 1:1:1",
		"1 1:1",
		"1 a:1:1",
		"1 0:1:1",
		"1 1:1:abc",
	} {
		if _, err := ParseLine(line); err == nil {
			t.Errorf("ParseLine(%q) should fail", line)
		}
	}
}

func TestReadSamples_ReportsLine(t *testing.T) {
	_, err := ReadSamples(strings.NewReader("1 1:1:1\n\n0 1:2\n"))
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Errorf("ReadSamples() error = %v, want line 3", err)
	}
}
