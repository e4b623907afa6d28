package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-drift/sectionlist/pkg/driver"
	"github.com/go-drift/sectionlist/pkg/raster"
)

func init() {
	RegisterCommand(&Command{
		Name:  "render",
		Short: "Render fixtures to a PNG image",
		Long: `Apply each fixture in turn to an in-memory list and write the final
frame as a PNG image.

Size, row extents and colors come from the render section of the
configuration; list style, insets, alignment and refresh state from the
list section.

Flags:
  --config FILE     Configuration file (default: ./sectionlist.yaml if present)
  -o, --output FILE Output image (default: sectionlist.png)
  --scroll Y        Scroll to content offset Y before rendering
  --ratio R         Full reload ratio; negative disables the fallback
  --reload POLICY   Reload policy: always, never or changed`,
		Usage: "sectionlist render [flags] <fixture.yaml>...",
		Run:   runRender,
	})
}

func runRender(args []string) error {
	opts, rest, err := parseShared(args)
	if err != nil {
		return err
	}
	output := "sectionlist.png"
	var scrollY *float64
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "-o", "--output":
			if i+1 >= len(rest) {
				return fmt.Errorf("%s requires a file path", rest[i])
			}
			output = rest[i+1]
			i++
		case "--scroll":
			if i+1 >= len(rest) {
				return fmt.Errorf("--scroll requires a value")
			}
			y, err := strconv.ParseFloat(rest[i+1], 64)
			if err != nil {
				return fmt.Errorf("invalid --scroll %q", rest[i+1])
			}
			scrollY = &y
			i++
		default:
			return fmt.Errorf("unknown flag: %s", rest[i])
		}
	}
	if len(opts.files) == 0 {
		return fmt.Errorf("at least one fixture is required\n\nUsage: sectionlist render [flags] <fixture.yaml>...")
	}
	resolved, err := opts.resolve()
	if err != nil {
		return err
	}
	snaps, err := loadFixtures(opts.files)
	if err != nil {
		return err
	}

	rs := resolved.Render
	w := raster.New(raster.Settings{
		Width:        rs.Width,
		Height:       rs.Height,
		RowHeight:    rs.RowHeight,
		HeaderHeight: rs.HeaderHeight,
		Background:   rs.Background,
		Foreground:   rs.Foreground,
	})
	d := driver.New(w, fixtureContent(),
		driver.WithDiffOptions(resolved.DiffOptions...),
		driver.WithPoolOptions(resolved.PoolOptions...))
	defer d.Close()

	for i, s := range snaps {
		if err := d.Update(s, resolved.Scroll); err != nil {
			return fmt.Errorf("%s: %w", opts.files[i], err)
		}
	}
	if scrollY != nil {
		if err := w.ScrollTo(*scrollY); err != nil {
			return err
		}
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := w.WritePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Wrote %s (%dx%d, %d rows visible)\n", output, rs.Width, rs.Height, len(w.VisibleRows()))
	return nil
}
