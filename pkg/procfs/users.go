package procfs

import (
	"bufio"
	"bytes"
	"strings"
)

// LookupUser scans the identity table for uid and returns the first
// matching username. An unknown uid yields an empty name and a nil error.
func (fs FS) LookupUser(uid string) (string, error) {
	data, err := fs.read(fs.etcPath("passwd"))
	if err != nil {
		return "", err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// name:password:uid:gid:gecos:home:shell
		fields := strings.SplitN(line, ":", 4)
		if len(fields) < 3 {
			continue
		}
		if fields[2] == uid {
			return fields[0], nil
		}
	}
	return "", sc.Err()
}
