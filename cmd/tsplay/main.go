// Command tsplay decodes MPEG transport streams from the command line,
// following the teacher's gwebp flag-based subcommand dispatch.
//
// Usage:
//
//	tsplay decode [options] <input.ts>   Decode a .ts file to PPM frames + WAV audio
//	tsplay live [options] <source>       Play a file, ws://, or http(s):// source, metrics only
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "decode":
		err = runDecode(os.Args[2:])
	case "live":
		err = runLive(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "tsplay: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "tsplay: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  tsplay decode [options] <input.ts>   Decode to PPM frames + WAV audio
  tsplay live [options] <source>       Play a file path, ws://, or http(s):// source

Run "tsplay <command> -h" for command-specific options.
`)
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}
