package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"pdfmgr/internal/volume"
)

// StdioPrompter is the terminal volume.Prompter. When input does not come
// from a terminal, answers are echoed so transcripts stay readable.
type StdioPrompter struct {
	r    *bufio.Reader
	w    io.Writer
	echo bool
}

var _ volume.Prompter = (*StdioPrompter)(nil)

// NewStdioPrompter reads answers from in and writes to out.
func NewStdioPrompter(in io.Reader, out io.Writer) *StdioPrompter {
	echo := true
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		echo = false
	}
	return &StdioPrompter{r: bufio.NewReader(in), w: out, echo: echo}
}

func (p *StdioPrompter) WriteLine(s string) {
	fmt.Fprintln(p.w, s)
}

// ReadLine returns the next input line without its line ending. A final
// line without a newline is returned before io.EOF.
func (p *StdioPrompter) ReadLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if p.echo {
		fmt.Fprintf(p.w, "> %s\n", line)
	}
	return line, nil
}

// PromptWalkRequest asks for the directories req is missing and lets the
// operator confirm or override every other option. An empty answer keeps
// the value shown in brackets; invalid answers are asked again.
func PromptWalkRequest(p volume.Prompter, req volume.WalkRequest) (volume.WalkRequest, error) {
	var err error
	for req.InputDir == "" {
		if req.InputDir, err = ask(p, "Input directory", ""); err != nil {
			return req, err
		}
	}
	for req.OutputDir == "" {
		if req.OutputDir, err = ask(p, "Output directory", ""); err != nil {
			return req, err
		}
	}

	for {
		ans, err := ask(p, "Sort order (asc/desc)", string(req.Order))
		if err != nil {
			return req, err
		}
		order, perr := volume.ParseOrder(ans)
		if perr == nil {
			req.Order = order
			break
		}
		p.WriteLine("  Invalid order, enter asc or desc.")
	}

	for {
		ans, err := ask(p, "Batch size", strconv.Itoa(req.BatchSize))
		if err != nil {
			return req, err
		}
		if n, cerr := strconv.Atoi(ans); cerr == nil && n >= 1 {
			req.BatchSize = n
			break
		}
		p.WriteLine("  Invalid batch size, enter a number of at least 1.")
	}

	if req.Naming.Prefix, err = ask(p, "Filename prefix", req.Naming.Prefix); err != nil {
		return req, err
	}
	if req.Naming.Suffix, err = ask(p, "Filename suffix", req.Naming.Suffix); err != nil {
		return req, err
	}

	for {
		current := "none"
		if req.Compression != nil {
			current = req.Compression.String()
		}
		ans, err := ask(p, "Compression (none/basic/medium/aggressive)", current)
		if err != nil {
			return req, err
		}
		if ans == "none" {
			req.Compression = nil
			break
		}
		level, perr := volume.ParseLevel(ans)
		if perr == nil {
			req.Compression = &level
			break
		}
		p.WriteLine("  Invalid compression level.")
	}
	return req, nil
}

func ask(p volume.Prompter, label, def string) (string, error) {
	if def != "" {
		p.WriteLine(fmt.Sprintf("%s [%s]:", label, def))
	} else {
		p.WriteLine(label + ":")
	}
	ans, err := p.ReadLine()
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	ans = strings.TrimSpace(ans)
	if ans == "" {
		return def, nil
	}
	return ans, nil
}
