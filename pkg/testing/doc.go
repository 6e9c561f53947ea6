// Package testing provides a layout testing harness for the HTML toolkit.
//
// # Quick Start
//
// Create a tester, pump a layout, and make assertions:
//
//	func TestProfileCard(t *testing.T) {
//	    tester := sduitest.NewLayoutTesterWithT(t)
//	    err := tester.PumpYAML(`
//	layout:
//	  type: text
//	  content: Hello ${name}
//	data:
//	  name: Ada
//	`)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    if !tester.Find(sduitest.ByText("Hello Ada")).Exists() {
//	        t.Error("expected greeting")
//	    }
//	}
//
// The tester builds synchronously, so image bitmaps are applied by the time
// Pump returns, and it collects every reported error instead of logging it.
//
// # Snapshot Testing
//
// Compare rendered HTML against golden files:
//
//	tester.CaptureSnapshot().MatchesFile(t, "testdata/card.html")
//
// Update snapshots with:
//
//	SDUI_UPDATE_SNAPSHOTS=1 go test ./...
package testing
