package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"multidict/logging"
	"multidict/storage"
)

// ---------------------------------------------------------------------------
// Go memory layout constants (64-bit)
// ---------------------------------------------------------------------------

const (
	// string header: ptr(8) + len(8).
	stringHeader = 16

	// []int slice header: ptr(8) + len(8) + cap(8).
	sliceHeader = 24

	// One slot: key, folded key and value headers plus the dead flag padded
	// to a word.
	slotSize = 3*stringHeader + 8

	// Each index position is one int in the key's position list.
	positionSize = 8

	// Fixed cost of the index map header.
	mapHeader = 64
)

type memcalcParams struct {
	entries  int
	distinct int
	keyLen   int
	valueLen int
}

func registerMemcalcCmd(rootCmd *cobra.Command) {
	var p memcalcParams
	cmd := &cobra.Command{
		Use:   "memcalc",
		Short: "Compare the modelled and measured footprint of a store",
		Long:  "memcalc fills a case-insensitive store with synthetic entries and compares a layout model of its memory use against the size measured by walking the store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMemcalc(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().IntVar(&p.entries, "entries", 100_000, "number of entries")
	cmd.Flags().IntVar(&p.distinct, "distinct", 0, "number of distinct keys (0 = one per entry)")
	cmd.Flags().IntVar(&p.keyLen, "key-len", 16, "key length in bytes")
	cmd.Flags().IntVar(&p.valueLen, "value-len", 32, "value length in bytes")
	rootCmd.AddCommand(cmd)
}

// model estimates the store footprint from the layout constants. Keys are
// lowercase, so the folded key shares the key's bytes but is counted again
// by the walker, and the model does the same.
func model(p memcalcParams) (entryBytes, indexBytes int64) {
	entryBytes = int64(p.entries) * int64(slotSize+2*p.keyLen+p.valueLen)
	perKey := stringHeader + p.keyLen + sliceHeader
	indexBytes = mapHeader + int64(p.distinct*perKey) + int64(p.entries*positionSize)
	return entryBytes, indexBytes
}

// populate builds the store the model describes.
func populate(p memcalcParams) *storage.Store[storage.IStr, string] {
	s := storage.New[storage.IStr, string](cfg.StoreOptions())
	value := strings.Repeat("v", p.valueLen)
	for i := range p.entries {
		s.Insert(storage.IStr(syntheticKey(i%p.distinct, p.keyLen)), value)
	}
	return s
}

func syntheticKey(n, keyLen int) string {
	k := fmt.Sprintf("k%d", n)
	if len(k) >= keyLen {
		return k
	}
	return k + strings.Repeat("x", keyLen-len(k))
}

func runMemcalc(out io.Writer, p memcalcParams) error {
	if p.entries < 1 || p.keyLen < 1 || p.valueLen < 0 {
		return fmt.Errorf("entries and key-len must be positive, value-len non-negative")
	}
	if p.distinct <= 0 || p.distinct > p.entries {
		p.distinct = p.entries
	}

	modelEntries, modelIndex := model(p)
	logging.Debug().Int("entries", p.entries).Int("distinct", p.distinct).Msg("populating store")
	m := populate(p).MemoryUsage()

	raw := int64(p.entries) * int64(p.keyLen+p.valueLen)

	fmt.Fprintf(out, "%s entries, %s distinct keys, key %d B, value %d B\n\n",
		humanize.Comma(int64(p.entries)), humanize.Comma(int64(p.distinct)), p.keyLen, p.valueLen)
	fmt.Fprintf(out, "  %-18s %12s   %12s\n", "", "Modelled", "Measured")
	row := func(label string, modelled, measured int64) {
		fmt.Fprintf(out, "  %-18s %12s   %12s\n", label, humanize.IBytes(uint64(modelled)), humanize.IBytes(uint64(measured)))
	}
	row("Raw data:", raw, raw)
	row("Entries:", modelEntries, m.EntryBytes)
	row("Index:", modelIndex, m.IndexBytes)
	row("Total:", modelEntries+modelIndex, m.Total())
	fmt.Fprintf(out, "  %-18s %11.2fx   %11.2fx\n", "Overhead ratio:",
		float64(modelEntries+modelIndex)/float64(raw), float64(m.Total())/float64(raw))
	fmt.Fprintf(out, "  %-18s %12s\n", "Per entry:", humanize.IBytes(uint64(m.Total()/int64(p.entries))))
	return nil
}
