package main

import (
	"os"
	"strings"

	"contentdesk/internal/cli"
)

// directLookups maps a record id prefix to the command that shows it.
var directLookups = []struct {
	prefix string
	cmd    []string
}{
	{prefix: "task-", cmd: []string{"tasks", "show"}},
	{prefix: "enquiry-", cmd: []string{"enquiries", "show"}},
}

func lookupCommand(s string) ([]string, bool) {
	s = strings.TrimSpace(s)
	for _, l := range directLookups {
		rest, ok := strings.CutPrefix(s, l.prefix)
		if !ok || rest == "" {
			continue
		}
		for _, r := range rest {
			if r < '0' || r > '9' {
				return nil, false
			}
		}
		return l.cmd, true
	}
	return nil, false
}

func rewriteDirectLookupArgs(argv []string) []string {
	// Convenience: `contentdesk task-12` works like `contentdesk tasks show task-12`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (`contentdesk --dir ... task-12`), so find the first
	// positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":    true,
		"--actor":  true,
		"--format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	rewrite := func(i int, cmd []string) []string {
		out := make([]string, 0, len(argv)+len(cmd))
		out = append(out, argv[:i]...)
		out = append(out, cmd...)
		out = append(out, argv[i:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				if cmd, ok := lookupCommand(argv[i+1]); ok {
					return rewrite(i+1, cmd)
				}
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token.
		if cmd, ok := lookupCommand(a); ok {
			return rewrite(i, cmd)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
