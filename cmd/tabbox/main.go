// TabBox builds laser and CNC cutting files for finger-jointed boxes.
//
// Usage:
//
//	tabbox build -w 100 -h 50 -d 65 -t 3 -svg box.svg -gcode box.nc
//	tabbox build -design enclosure.tabbox.json -cutouts holes.csv -dxf box.dxf
//	tabbox serve
//	tabbox profiles
//	tabbox backup -out tabbox-backup.json
//	tabbox restore -in tabbox-backup.json
//
// Build:
//
//	go build -o tabbox ./cmd/tabbox
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

var Version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "tabbox: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return flag.ErrHelp
	}
	switch args[0] {
	case "build":
		return runBuild(args[1:], stdout, stderr)
	case "serve":
		return runServe(args[1:], stderr)
	case "profiles":
		return runProfiles(args[1:], stdout, stderr)
	case "backup":
		return runBackup(args[1:], stdout, stderr)
	case "restore":
		return runRestore(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, Version)
		return nil
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `usage: tabbox <command> [flags]

commands:
  build      build a box and write DXF, SVG, PDF, labels, schedule, G-code or STL
  serve      run the HTTP service
  profiles   list machine profiles
  backup     export config, custom profiles and templates to one file
  restore    import a backup file
  version    print the version

run "tabbox <command> -help" for the flags of a command.
`)
}
