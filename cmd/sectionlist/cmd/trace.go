package cmd

import (
	"fmt"

	"github.com/go-drift/sectionlist/pkg/driver"
	sltest "github.com/go-drift/sectionlist/pkg/testing"
)

func init() {
	RegisterCommand(&Command{
		Name:  "trace",
		Short: "Print widget commands for a sequence of fixtures",
		Long: `Feed each fixture in turn to a driver backed by a recording widget and
print the commands the widget received for every update.

The recording widget checks its counts against the driver after every
command, so a trace that completes is a consistent one.

Flags:
  --config FILE     Configuration file (default: ./sectionlist.yaml if present)
  --ratio R         Full reload ratio; negative disables the fallback
  --reload POLICY   Reload policy: always, never or changed`,
		Usage: "sectionlist trace [flags] <fixture.yaml>...",
		Run:   runTrace,
	})
}

func runTrace(args []string) error {
	opts, rest, err := parseShared(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unknown flag: %s", rest[0])
	}
	if len(opts.files) == 0 {
		return fmt.Errorf("at least one fixture is required\n\nUsage: sectionlist trace [flags] <fixture.yaml>...")
	}
	resolved, err := opts.resolve()
	if err != nil {
		return err
	}
	snaps, err := loadFixtures(opts.files)
	if err != nil {
		return err
	}

	w := sltest.NewRecordingWidget()
	w.Viewport = float64(resolved.Render.Height)
	w.RowHeight = resolved.Render.RowHeight
	d := driver.New(w, fixtureContent(),
		driver.WithDiffOptions(resolved.DiffOptions...),
		driver.WithPoolOptions(resolved.PoolOptions...))
	defer d.Close()

	for i, s := range snaps {
		w.ResetLog()
		if err := d.Update(s, resolved.Scroll); err != nil {
			return fmt.Errorf("%s: %w", opts.files[i], err)
		}
		log := w.Log()
		fmt.Fprintf(stdout, "== %s\n", opts.files[i])
		for _, c := range log.Commands {
			fmt.Fprintf(stdout, "  %s\n", c)
		}
		for _, c := range log.Scroll {
			fmt.Fprintf(stdout, "  scroll: %s\n", c)
		}
	}

	st := d.Stats()
	fmt.Fprintf(stdout, "%d cycles, %d full reloads, %d renderers created, %d reused\n",
		st.Cycles, st.FullReloads, st.Pool.Created, st.Pool.Reused)
	return nil
}
