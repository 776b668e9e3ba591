// Command ipd-report reprints the score report from a saved results
// document, so a finished run can be inspected without replaying it.
package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/h-e19/ipd-tournament-simulator/internal/results"
)

func main() {
	flag.Parse()

	path := results.DefaultFilename
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	doc, err := results.Load(path)
	if err != nil {
		log.Fatalf("load results: %v", err)
	}
	if err := results.WriteReport(os.Stdout, doc); err != nil {
		log.Fatalf("print report: %v", err)
	}
}
