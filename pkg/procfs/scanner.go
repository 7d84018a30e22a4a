package procfs

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

const maxLineSize = 1024 * 1024

// Scanner extracts the value that follows a key in a line-oriented record.
// Only the first token of a line is compared against the key, so a value
// that happens to spell another key is never mistaken for it.
type Scanner struct {
	separators string
	assign     bool
}

var (
	// ColonFields reads "key: value" records such as meminfo and status.
	ColonFields = Scanner{separators: ":"}
	// SpaceFields reads "key value" records such as the system stat record.
	SpaceFields = Scanner{}
	// AssignFields reads KEY="value with spaces" records such as os-release.
	AssignFields = Scanner{assign: true}
)

// NewScanner returns a Scanner treating each rune of separators as whitespace.
func NewScanner(separators string) Scanner {
	return Scanner{separators: separators}
}

// Fields normalizes and tokenizes one line.
func (s Scanner) Fields(line string) []string {
	if s.separators != "" {
		line = strings.Map(func(r rune) rune {
			if strings.ContainsRune(s.separators, r) {
				return ' '
			}
			return r
		}, line)
	}
	return strings.Fields(line)
}

// pair splits one line into its key and the value that follows it.
func (s Scanner) pair(line string) (key, value string, ok bool) {
	if s.assign {
		k, v, found := strings.Cut(line, "=")
		if !found {
			return "", "", false
		}
		return strings.TrimSpace(k), unquote(strings.TrimSpace(v)), true
	}
	fields := s.Fields(line)
	switch len(fields) {
	case 0:
		return "", "", false
	case 1:
		return fields[0], "", true
	}
	return fields[0], fields[1], true
}

// unquote strips one matching pair of surrounding quotes.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// Lookup returns the value of the first line whose key is key. A key that
// ends its line yields an empty value and a nil error; a key that never
// appears yields ErrKeyNotFound.
func (s Scanner) Lookup(r io.Reader, key string) (string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	for sc.Scan() {
		k, v, ok := s.pair(sc.Text())
		if ok && k == key {
			return v, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", ErrKeyNotFound
}

// LookupBytes is Lookup over an in-memory record.
func (s Scanner) LookupBytes(data []byte, key string) (string, error) {
	return s.Lookup(bytes.NewReader(data), key)
}

// ParseUint converts a scanned token into an unsigned integer.
func ParseUint(key, value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, &ParseError{Key: key, Value: value, Err: err}
	}
	return v, nil
}

// ParseInt converts a scanned token into a signed integer.
func ParseInt(key, value string) (int64, error) {
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &ParseError{Key: key, Value: value, Err: err}
	}
	return v, nil
}

// ParseFloat converts a scanned token into a float.
func ParseFloat(key, value string) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, &ParseError{Key: key, Value: value, Err: err}
	}
	return v, nil
}
