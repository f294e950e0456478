package engine

import "strings"

// SplitCommands splits a shell/command field into logical commands. Commands
// are separated by newlines; a trailing backslash continues the command on
// the next line (the backslash and surrounding whitespace are replaced with
// a single space). Blank lines are skipped.
func SplitCommands(input string) []string {
	var commands []string
	var current strings.Builder

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, "\\") {
			joined := strings.TrimRight(strings.TrimSuffix(trimmed, "\\"), " \t")
			current.WriteString(joined)
			current.WriteString(" ")
			continue
		}
		current.WriteString(trimmed)
		commands = append(commands, current.String())
		current.Reset()
	}

	// A dangling continuation still forms a command.
	if current.Len() > 0 {
		commands = append(commands, strings.TrimRight(current.String(), " "))
	}
	return commands
}
