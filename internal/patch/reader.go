package patch

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ScanReader reads r line by line (LF or CRLF) and scans it. There is no
// line length limit. Read errors are returned as-is with no partial result.
func ScanReader(r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)
	s := &scanState{}
	lineNo := 0

	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			s.feed(lineNo, strings.TrimSuffix(line, "\n"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return s.result(), nil
}

// ScanFile opens path and scans its contents. Open and read failures
// propagate unmodified (*os.PathError for a missing file).
func ScanFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ScanReader(f)
}
