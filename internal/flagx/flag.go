// Package flagx lets several independent flag sets share one command line.
//
// The standard flag package stops at the first flag it does not know, so
// each consumer first narrows os.Args down to the flags it owns.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// Select returns the subset of args that belongs to the named flags.
//
// Names are given without dashes; both "-name" and "--name" spellings match,
// as do the "-name=value" and "-name value" forms. A separate value is taken
// only when the next argument does not itself start with a dash. Order is
// preserved and the result is never nil.
func Select(args []string, names ...string) []string {
	owned := make(map[string]struct{}, len(names))
	for _, n := range names {
		owned[strings.TrimLeft(n, "-")] = struct{}{}
	}

	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		name, hasValue, ok := flagName(args[i])
		if !ok {
			continue
		}
		if _, mine := owned[name]; !mine {
			continue
		}

		out = append(out, args[i])
		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// flagName splits a "-name", "--name" or "-name=value" argument.
func flagName(arg string) (name string, hasValue bool, ok bool) {
	if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
		return "", false, false
	}
	name = strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		return name[:i], true, true
	}
	return name, false, true
}

// ConfigPath extracts the config file path given via -c or -config.
// It returns "" when neither flag is present or the value is malformed.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")

	if err := fs.Parse(Select(args, "c", "config")); err != nil {
		return ""
	}

	return path
}
