// Package flagx splits the command line between the stdlib flag sets used by
// configuration loaders and the command tree that handles everything else.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigFileFlags name the flags that select a JSON config file.
var ConfigFileFlags = []string{"-c", "-config"}

// FilterArgs returns only the allowed flags from args, together with their
// values. Both "-f value" and "-f=value" forms are recognised; a value is
// taken from the next argument only when it does not itself look like a flag.
func FilterArgs(args []string, allowedFlags []string) []string {
	kept, _ := split(args, allowedFlags)
	return kept
}

// StripArgs is the complement of FilterArgs: it removes the given flags and
// their values, returning the remaining arguments in order.
func StripArgs(args []string, flags []string) []string {
	_, rest := split(args, flags)
	return rest
}

func split(args []string, flags []string) (kept, rest []string) {
	known := make(map[string]struct{}, len(flags))
	for _, f := range flags {
		known[f] = struct{}{}
	}

	kept = make([]string, 0, len(args))
	rest = make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := known[name]; ok {
				kept = append(kept, arg)
			} else {
				rest = append(rest, arg)
			}
			continue
		}

		if _, ok := known[arg]; !ok {
			rest = append(rest, arg)
			continue
		}

		kept = append(kept, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			kept = append(kept, args[i+1])
			i++
		}
	}

	return kept, rest
}

// JsonConfigFlags extracts the config file path given via -c or -config.
// It returns an empty string when neither flag is present.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], ConfigFileFlags)

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
