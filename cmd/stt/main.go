package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stt-cli/internal/cli"
)

// commandNames returns the names and aliases of root's subcommands, plus the
// ones cobra adds on its own.
func commandNames(root *cobra.Command) map[string]bool {
	names := map[string]bool{"help": true, "completion": true, "__complete": true, "__completeNoDesc": true}
	for _, c := range root.Commands() {
		names[c.Name()] = true
		for _, a := range c.Aliases {
			names[a] = true
		}
	}
	return names
}

// rewriteImplicitOnArgs turns `stt <activity...>` into `stt on <activity...>`
// when the first positional token is not a command.
func rewriteImplicitOnArgs(argv []string, commands map[string]bool) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--file":   true,
		"-f":       true,
		"--format": true,
	}

	insertOn := func(i int) []string {
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "on")
		return append(out, argv[i:]...)
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) {
				return insertOn(i)
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}
		if commands[a] {
			return argv
		}
		return insertOn(i)
	}
	return argv
}

func main() {
	cmd := cli.NewRootCmd()
	cmd.SetArgs(rewriteImplicitOnArgs(os.Args, commandNames(cmd))[1:])
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
