package testutil

import (
	"io"
	"strings"
)

// ScriptedPrompter feeds a fixed sequence of input lines and records every
// line written. ReadLine returns io.EOF once the script is exhausted.
type ScriptedPrompter struct {
	inputs []string
	reads  int
	Output []string
}

// NewScriptedPrompter creates a prompter that answers with inputs in order.
func NewScriptedPrompter(inputs ...string) *ScriptedPrompter {
	return &ScriptedPrompter{inputs: inputs}
}

func (p *ScriptedPrompter) ReadLine() (string, error) {
	if p.reads >= len(p.inputs) {
		return "", io.EOF
	}
	line := p.inputs[p.reads]
	p.reads++
	return line, nil
}

func (p *ScriptedPrompter) WriteLine(s string) {
	p.Output = append(p.Output, s)
}

// Reads returns how many lines have been consumed.
func (p *ScriptedPrompter) Reads() int {
	return p.reads
}

// Text returns everything written, newline separated.
func (p *ScriptedPrompter) Text() string {
	return strings.Join(p.Output, "\n")
}

// Contains reports whether any written line contains substr.
func (p *ScriptedPrompter) Contains(substr string) bool {
	return strings.Contains(p.Text(), substr)
}
