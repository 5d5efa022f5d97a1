// Command diagnose runs the companion core's self-checks and reports
// pass/fail per subsystem, matching §6's "--offline --base-dir <path>" CLI
// contract for a bring-up diagnostics pass that never requires attached
// hardware or a live realtime session.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"theo/internal/diagnose"
	"theo/internal/logging"
)

func main() {
	offline := flag.Bool("offline", false, "skip checks that would dial the realtime API")
	baseDir := flag.String("base-dir", ".", "scratch directory diagnostics may read/write under")
	logLevel := flag.String("log-level", "info", "zerolog level for diagnostic output")
	flag.Parse()

	logging.Init("", *logLevel)

	report := diagnose.Run(diagnose.Options{Offline: *offline, BaseDir: *baseDir})

	for _, check := range report.Checks {
		if check.OK {
			log.Info().Str("check", check.Name).Msg("pass")
		} else {
			log.Error().Str("check", check.Name).Err(check.Err).Msg("fail")
		}
	}

	if !report.Passed() {
		fmt.Fprintln(os.Stderr, "diagnostics failed")
		os.Exit(1)
	}
	fmt.Println("diagnostics passed")
}
