package brctl

import "strings"

type bridgeEntry struct {
	name  string
	ports []string
}

// parseShow parses "brctl show" output. The first line is a header; each
// bridge line carries name, bridge id, STP flag and at most one port;
// additional ports follow on continuation lines that start with whitespace.
func parseShow(lines []string) []bridgeEntry {
	var out []bridgeEntry
	for i, line := range lines {
		if i == 0 && strings.HasPrefix(line, "bridge name") {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'
		fields := strings.Fields(line)

		if indented {
			// Continuation line: a port of the previous bridge.
			if len(out) > 0 && len(fields) > 0 {
				last := &out[len(out)-1]
				last.ports = append(last.ports, fields[0])
			}
			continue
		}

		entry := bridgeEntry{name: fields[0]}
		// name, bridge id, stp, then the first port if any.
		if len(fields) >= 4 {
			entry.ports = append(entry.ports, fields[3])
		}
		out = append(out, entry)
	}
	return out
}
