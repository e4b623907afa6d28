package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-drift/sectionlist/pkg/config"
	"github.com/go-drift/sectionlist/pkg/driver"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// sharedOptions are the flags every fixture command accepts.
type sharedOptions struct {
	configPath string
	ratio      *float64
	reload     string
	files      []string
}

// parseShared consumes the shared flags and returns the ones it does not know.
func parseShared(args []string) (sharedOptions, []string, error) {
	var opts sharedOptions
	var rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--config":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--config requires a file path")
			}
			opts.configPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			opts.configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--ratio":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--ratio requires a value")
			}
			v, err := strconv.ParseFloat(args[i+1], 64)
			if err != nil {
				return opts, nil, fmt.Errorf("invalid --ratio %q", args[i+1])
			}
			opts.ratio = &v
			i++
		case arg == "--reload":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--reload requires always, never or changed")
			}
			opts.reload = args[i+1]
			i++
		case strings.HasPrefix(arg, "-") && arg != "-":
			rest = append(rest, arg)
			if (arg == "-o" || arg == "--output" || arg == "--scroll") && i+1 < len(args) {
				rest = append(rest, args[i+1])
				i++
			}
		default:
			opts.files = append(opts.files, arg)
		}
	}
	return opts, rest, nil
}

// resolve loads the configuration file, or sectionlist.yaml from the working
// directory when none was given, and applies flag overrides.
func (o sharedOptions) resolve() (*config.Resolved, error) {
	var cfg *config.Config
	var err error
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.LoadOptional(".")
	}
	if err != nil {
		return nil, err
	}
	if o.ratio != nil {
		cfg.Diff.FullReloadRatio = o.ratio
	}
	if o.reload != "" {
		cfg.Diff.Reload = o.reload
	}
	return config.Resolve(cfg)
}

func loadFixtures(files []string) ([]*snapshot.Snapshot, error) {
	out := make([]*snapshot.Snapshot, 0, len(files))
	for _, f := range files {
		s, err := config.LoadFixture(f)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// fixtureContent labels rows and headers from fixture payloads.
func fixtureContent() driver.Content {
	return driver.Content{
		Row: &driver.Builder{Build: func(payload any, _ snapshot.Position) any {
			if it, ok := payload.(config.FixtureItem); ok {
				return it.Label()
			}
			return payload
		}},
		Header: &driver.Builder{Build: func(payload any, _ snapshot.Position) any {
			if s, ok := payload.(config.FixtureSection); ok {
				return s.Label()
			}
			return payload
		}},
	}
}
