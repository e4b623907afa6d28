package cmd

import (
	"fmt"

	"github.com/go-drift/sectionlist/pkg/reconcile"
)

func init() {
	RegisterCommand(&Command{
		Name:  "diff",
		Short: "Print the change set between two fixtures",
		Long: `Print the operations that turn the first fixture into the second.

Operations are listed in the order a widget applies them: removals,
insertions, moves, then reloads. When the change touches more than the
configured share of rows and sections the diff falls back to a full reload.

Flags:
  --config FILE     Configuration file (default: ./sectionlist.yaml if present)
  --ratio R         Full reload ratio; negative disables the fallback
  --reload POLICY   Reload policy: always, never or changed`,
		Usage: "sectionlist diff [flags] <old.yaml> <new.yaml>",
		Run:   runDiff,
	})
}

func runDiff(args []string) error {
	opts, rest, err := parseShared(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unknown flag: %s", rest[0])
	}
	if len(opts.files) != 2 {
		return fmt.Errorf("two fixtures are required\n\nUsage: sectionlist diff [flags] <old.yaml> <new.yaml>")
	}
	resolved, err := opts.resolve()
	if err != nil {
		return err
	}
	snaps, err := loadFixtures(opts.files)
	if err != nil {
		return err
	}

	cs := reconcile.Diff(snaps[0], snaps[1], resolved.DiffOptions...)
	fmt.Fprint(stdout, cs.String())
	if !cs.IsEmpty() {
		fmt.Fprintf(stdout, "%d ops, %d of %d changed\n", len(cs.Ops), cs.Changed, cs.Total)
	} else {
		fmt.Fprintln(stdout)
	}
	return nil
}
