package volume

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Console receives operator-facing output, one line at a time.
type Console interface {
	WriteLine(s string)
}

// Prompter is a Console that can also block for one line of operator input.
// ReadLine returns io.EOF when the input is closed.
type Prompter interface {
	Console
	ReadLine() (string, error)
}

var printer = message.NewPrinter(language.English)

// FormatBytes renders n with thousands separators, e.g. "1,234 bytes".
func FormatBytes(n int64) string {
	return printer.Sprintf("%d bytes", n)
}

const rule = "------------------------------------------------------------"

func writef(c Console, format string, args ...any) {
	c.WriteLine(fmt.Sprintf(format, args...))
}

// writeBatch prints the batch header and its files with their sorted-list numbers.
func writeBatch(c Console, b *Batch) {
	writef(c, "Creating Volume %3d: %s", b.Volume, b.Name)
	writef(c, "  Files %3d-%3d (%d files)", b.Start+1, b.End(), len(b.Files))
	writeFiles(c, b)
}

func writeFiles(c Console, b *Batch) {
	for _, f := range b.Files {
		writef(c, "    %3d. %s (%s)", b.Number(f), f.Name(), FormatBytes(f.Size()))
	}
}

func writeHeader(c Console, req WalkRequest, total, planned int) {
	writef(c, "Processing %d PDF files from %s", total, req.InputDir)
	writef(c, "Order: %s, Batch size: %d", strings.ToUpper(string(req.Order)), req.BatchSize)
	writef(c, "Will create %d volume(s)", planned)
	c.WriteLine(rule)
}

func writeSummary(c Console, s *RunSummary) {
	c.WriteLine(rule)
	c.WriteLine("Summary:")
	writef(c, "  Total files processed: %d", s.TotalFiles)
	writef(c, "  Volumes created: %d", len(s.Volumes))
	writef(c, "  Output directory: %s", s.OutputDir)
	if s.Compression != nil {
		writef(c, "  Compression level: %s", *s.Compression)
	}
	if len(s.Failures) > 0 {
		writef(c, "  Volumes failed: %d", len(s.Failures))
	}
	if len(s.Volumes) > 0 {
		c.WriteLine("  Volume files:")
		for _, v := range s.Volumes {
			writef(c, "    %s (%s)", v.Name, FormatBytes(v.Size))
		}
	}
}

func writeQuitSummary(c Console, s *RunSummary) {
	c.WriteLine("")
	c.WriteLine("  Quitting volume creation.")
	c.WriteLine(rule)
	c.WriteLine("Summary:")
	writef(c, "  Volumes created so far: %d", len(s.Volumes))
}
