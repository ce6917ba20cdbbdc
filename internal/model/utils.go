package model

import "strings"

func write(sb *strings.Builder, s ...string) {
	for _, str := range s {
		sb.WriteString(str)
	}
}

func writeln(sb *strings.Builder, s ...string) {
	write(sb, s...)
	sb.WriteByte('\n')
}

// writeGroup writes one line per item, each wrapped in prefix/suffix, followed
// by a blank line. Empty groups write nothing.
func writeGroup(sb *strings.Builder, items []string, prefix, suffix string) {
	if len(items) == 0 {
		return
	}
	for _, item := range items {
		writeln(sb, prefix, item, suffix)
	}
	writeln(sb)
}
