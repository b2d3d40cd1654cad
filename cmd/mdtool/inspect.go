package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"multidict/headers"
	"multidict/logging"
	"multidict/setlike"
	"multidict/storage"
)

func registerInspectCmd(rootCmd *cobra.Command) {
	var (
		names  []string
		memory bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Parse a header block and print its fields in order",
		Long:  "Parse a header block from file, or stdin when no file is given, and print every field in arrival order. Field names are matched case-insensitively.",
		Example: `  mdtool inspect request.txt
  mdtool inspect --get set-cookie --get host < request.txt
  mdtool inspect --memory request.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			source := "stdin"
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in, source = f, args[0]
			}
			return runInspect(cmd.OutOrStdout(), in, source, names, memory)
		},
	}
	cmd.Flags().StringArrayVar(&names, "get", nil, "print only the values of this field (repeatable)")
	cmd.Flags().BoolVar(&memory, "memory", false, "print the memory footprint of the parsed block")
	rootCmd.AddCommand(cmd)
}

func runInspect(out io.Writer, in io.Reader, source string, names []string, memory bool) error {
	hdr, err := headers.ParseWithOptions(in, cfg.StoreOptions())
	if err != nil {
		return fmt.Errorf("parse %s: %w", source, err)
	}
	logging.Info().
		Str("source", source).
		Int("fields", hdr.Len()).
		Int("names", distinctNames(hdr)).
		Msg("parsed header block")

	if len(names) == 0 {
		if err := headers.Write(out, hdr); err != nil {
			return err
		}
	}
	for _, name := range names {
		values := hdr.GetAll(storage.IStr(name))
		if len(values) == 0 {
			logging.Warn().Str("field", name).Msg("field not present")
			continue
		}
		for _, v := range values {
			fmt.Fprintf(out, "%s: %s\n", name, v)
		}
	}

	if memory {
		fmt.Fprintf(out, "names: %d distinct\n", distinctNames(hdr))
		m := hdr.CurrentStore().MemoryUsage()
		fmt.Fprintf(out, "entries: %d (%d slots)\n", m.Entries, m.Slots)
		fmt.Fprintf(out, "entry bytes: %s\n", humanize.IBytes(uint64(m.EntryBytes)))
		fmt.Fprintf(out, "index bytes: %s\n", humanize.IBytes(uint64(m.IndexBytes)))
		fmt.Fprintf(out, "total: %s\n", humanize.IBytes(uint64(m.Total())))
	}
	return nil
}

// distinctNames counts field names, treating names that differ only in case
// as one.
func distinctNames(hdr *headers.Header) int {
	store := hdr.CurrentStore()
	names := setlike.NewSet[string]()
	for k, err := range hdr.Keys().All() {
		if err != nil {
			break
		}
		names.Add(store.Fold(k))
	}
	return names.Len()
}
