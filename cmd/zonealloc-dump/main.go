// Command zonealloc-dump drives a zonealloc.Allocator through a scripted
// workload of alloc/free/realloc directives and prints the introspection
// dump, reading the allocator's data structures only through its public
// contracts.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	zonealloc "github.com/tviejo/42Cursus-Malloc"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		trace          string
		workloadPath   string
		tinyZonePages  uint
		smallZonePages uint
	)

	cmd := &cobra.Command{
		Use:   "zonealloc-dump",
		Short: "Run a scripted allocate/release/reallocate workload and dump the heap",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(trace)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)

			var opts []zonealloc.Option
			if tinyZonePages > 0 {
				opts = append(opts, zonealloc.WithTinyZonePages(uintptr(tinyZonePages)))
			}
			if smallZonePages > 0 {
				opts = append(opts, zonealloc.WithSmallZonePages(uintptr(smallZonePages)))
			}
			a := zonealloc.NewAllocator(opts...)

			var script io.Reader = os.Stdin
			if workloadPath != "" {
				f, err := os.Open(workloadPath)
				if err != nil {
					return err
				}
				defer f.Close()
				script = f
			}

			if err := runWorkload(a, script); err != nil {
				return err
			}

			a.Dump(os.Stdout)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&trace, "trace", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&workloadPath, "workload", "", "path to a workload script (default: stdin)")
	flags.UintVar(&tinyZonePages, "page-multiple-tiny", 0, "override the TINY zone size, in OS pages (0 = spec default of 4)")
	flags.UintVar(&smallZonePages, "page-multiple-small", 0, "override the SMALL zone size, in OS pages (0 = spec default of 16)")

	return cmd
}

// runWorkload interprets one directive per line:
//
//	alloc <slot> <size>       allocate <size> bytes, remember it as <slot>
//	calloc <slot> <size>      same, zero-initialized
//	free <slot>               release the pointer remembered as <slot>
//	realloc <slot> <size>     reallocate the pointer at <slot> to <size> bytes
//
// Blank lines and lines starting with # are ignored.
func runWorkload(a *zonealloc.Allocator, r io.Reader) error {
	slots := map[string]unsafe.Pointer{}

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		cmdName := fields[0]

		entry := logrus.WithField("line", lineNo)

		switch cmdName {
		case "alloc", "calloc":
			if len(fields) != 3 {
				return fmt.Errorf("line %d: %s requires <slot> <size>", lineNo, cmdName)
			}
			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			var p unsafe.Pointer
			if cmdName == "calloc" {
				p = a.Calloc(uintptr(size))
			} else {
				p = a.Allocate(uintptr(size))
			}
			slots[fields[1]] = p
			entry.WithFields(logrus.Fields{"slot": fields[1], "size": size, "ptr": p}).Debug("workload: allocated")

		case "free":
			if len(fields) != 2 {
				return fmt.Errorf("line %d: free requires <slot>", lineNo)
			}
			a.Release(slots[fields[1]])
			delete(slots, fields[1])
			entry.WithField("slot", fields[1]).Debug("workload: released")

		case "realloc":
			if len(fields) != 3 {
				return fmt.Errorf("line %d: realloc requires <slot> <size>", lineNo)
			}
			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: %w", lineNo, err)
			}
			slots[fields[1]] = a.Reallocate(slots[fields[1]], uintptr(size))
			entry.WithFields(logrus.Fields{"slot": fields[1], "size": size}).Debug("workload: reallocated")

		default:
			return fmt.Errorf("line %d: unknown directive %q", lineNo, cmdName)
		}
	}

	return scanner.Err()
}
