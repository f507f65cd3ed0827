package ecms

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/csimplestring/go-csv/detector"
)

// Delimiters in order of preference, for when several characters occur
// equally regularly on every line.
const knownDelimiters = "\t,;|"

// DetermineDelimiter returns the single most likely rune that would delimit
// the values in br, assuming a CSV-like file. Nothing is consumed from br.
func DetermineDelimiter(br *bufio.Reader) rune {
	// Peek returns what it has along with an error on short input; a short
	// sample is fine to detect from
	sample, _ := br.Peek(4096)

	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(sample), '"')

	best := -1
	for _, candidate := range delimiters {
		if len(candidate) == 0 {
			continue
		}
		rank := strings.IndexByte(knownDelimiters, candidate[0])
		if rank >= 0 && (best < 0 || rank < best) {
			best = rank
		}
	}
	if best >= 0 {
		return rune(knownDelimiters[best])
	}

	// Too little to go on: use whichever delimiter the header has most of
	header := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		header = sample[:i]
	}
	out, most := ',', 0
	for _, c := range knownDelimiters {
		if n := bytes.Count(header, []byte(string(c))); n > most {
			out, most = c, n
		}
	}

	return out
}
