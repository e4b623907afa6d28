// Package testing provides test doubles and golden-file helpers for code that
// drives a section list.
//
// # Recording Widget
//
// RecordingWidget is an in-memory list widget. It applies structural commands
// the way a real widget would, checks its counts and keys against the data
// source after every command and logs what it was asked to do:
//
//	w := sltest.NewRecordingWidget()
//	d := driver.New(w, driver.Content{})
//	if err := d.Update(snap, scroll.Configuration{}); err != nil {
//	    t.Fatal(err)
//	}
//	w.Log().MatchesFile(t, "testdata/insert.log.json")
//
// Update golden logs with:
//
//	SECTIONLIST_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import sltest "github.com/go-drift/sectionlist/pkg/testing"
package testing
