package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/api/iterator"

	"multidict/logging"
	"multidict/multidict"
	"multidict/storage"
)

type scenario struct {
	name string
	fn   func() (detail string, err error)
}

var scenarios = []scenario{
	{"Order and duplicates", scenarioOrder},
	{"Case folding", scenarioCaseFolding},
	{"Concurrent modification", scenarioConcurrentModification},
	{"Exhaustion stability", scenarioExhaustion},
	{"Live views", scenarioLiveViews},
	{"Items membership", scenarioMembership},
	{"Disjointness", scenarioDisjoint},
	{"Churn and compaction", scenarioChurn},
	{"Store replacement", scenarioReplacement},
}

func registerSelftestCmd(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "selftest",
		Short: "Run the engine's behavioural checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSelftest(cmd.OutOrStdout(), scenarios)
		},
	})
}

func runSelftest(out io.Writer, scs []scenario) error {
	passed, failed := 0, 0
	for _, sc := range scs {
		start := time.Now()
		detail, err := sc.fn()
		if err != nil {
			fmt.Fprintf(out, "[FAIL] %s: %v\n", sc.name, err)
			logging.Err(err).Str("scenario", sc.name).Msg("scenario failed")
			failed++
			continue
		}
		fmt.Fprintf(out, "[PASS] %s: %s (%dms)\n", sc.name, detail, time.Since(start).Milliseconds())
		passed++
	}

	fmt.Fprintf(out, "\n%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(scs))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func scenarioOrder() (string, error) {
	md := multidict.New(storage.P("a", 1), storage.P("b", 2), storage.P("a", 3))
	got, err := collect(md)
	if err != nil {
		return "", err
	}
	want := []storage.Pair[string, int]{storage.P("a", 1), storage.P("b", 2), storage.P("a", 3)}
	if !slices.Equal(got, want) {
		return "", fmt.Errorf("items %v, expected %v", got, want)
	}
	if all := md.GetAll("a"); !slices.Equal(all, []int{1, 3}) {
		return "", fmt.Errorf("values of a %v, expected [1 3]", all)
	}
	return fmt.Sprintf("%d entries kept in insertion order", md.Len()), nil
}

func scenarioCaseFolding() (string, error) {
	md := multidict.NewCI(storage.P[storage.IStr]("Set-Cookie", "a=1"))
	md.Add("SET-COOKIE", "b=2")
	if n := len(md.GetAll("set-cookie")); n != 2 {
		return "", fmt.Errorf("%d values for set-cookie, expected 2", n)
	}
	first, err := md.Items().Iter()
	if err != nil {
		return "", err
	}
	p, err := first.Next()
	if err != nil {
		return "", err
	}
	if p.Key != "Set-Cookie" {
		return "", fmt.Errorf("stored key %q, expected original casing", p.Key)
	}
	return "lookups fold, stored keys keep their casing", nil
}

func scenarioConcurrentModification() (string, error) {
	md := multidict.New(storage.P("a", 1))
	it, err := md.Items().Iter()
	if err != nil {
		return "", err
	}
	md.Add("b", 2)
	_, err = it.Next()
	var cme *storage.ConcurrentModificationError
	if !errors.As(err, &cme) {
		return "", fmt.Errorf("next after mutation returned %v", err)
	}
	if _, again := it.Next(); again != err {
		return "", fmt.Errorf("failure not permanent: %v", again)
	}
	return cme.Error(), nil
}

func scenarioExhaustion() (string, error) {
	md := multidict.New(storage.P("a", 1))
	it, err := md.Keys().Iter()
	if err != nil {
		return "", err
	}
	if _, err := it.Next(); err != nil {
		return "", err
	}
	for range 3 {
		if _, err := it.Next(); !errors.Is(err, iterator.Done) {
			return "", fmt.Errorf("exhausted iterator returned %v", err)
		}
	}
	return "exhausted iterator stays done", nil
}

func scenarioLiveViews() (string, error) {
	md := multidict.New[string, int]()
	values := md.Values()
	for i := range 5 {
		md.Add("k", i)
		if values.Len() != i+1 {
			return "", fmt.Errorf("view length %d after %d adds", values.Len(), i+1)
		}
	}
	return "view length tracks every add", nil
}

func scenarioMembership() (string, error) {
	md := multidict.New(storage.P("k", 1))
	items := md.Items()
	switch {
	case !items.Contains(storage.P("k", 1)):
		return "", errors.New("stored pair not found")
	case items.Contains(storage.P("k", 2)):
		return "", errors.New("absent pair reported")
	case items.Contains(42):
		return "", errors.New("non-pair candidate reported")
	}
	return "pairs found, non-pairs rejected", nil
}

func scenarioDisjoint() (string, error) {
	md := multidict.New[string, int]()
	items := md.Items()
	if ok, err := items.IsDisjoint(items); err != nil || !ok {
		return "", fmt.Errorf("empty view disjoint with itself: %v, %v", ok, err)
	}
	md.Add("x", 1)
	if ok, err := items.IsDisjoint(items); err != nil || ok {
		return "", fmt.Errorf("non-empty view disjoint with itself: %v, %v", ok, err)
	}
	return "self-disjointness follows emptiness", nil
}

func scenarioChurn() (string, error) {
	const rounds = 2_000
	md := multidict.WithOptions[string, int](cfg.StoreOptions())
	for i := range rounds {
		md.Add(fmt.Sprintf("k%d", i%10), i)
		if i%3 != 0 {
			if _, err := md.PopOne(fmt.Sprintf("k%d", i%10)); err != nil {
				return "", err
			}
		}
	}
	m := md.CurrentStore().MemoryUsage()
	if m.Entries != md.Len() {
		return "", fmt.Errorf("memory reports %d entries, mapping has %d", m.Entries, md.Len())
	}
	if dead := m.Slots - m.Entries; dead > 2*max(cfg.CompactMin, m.Entries) {
		return "", fmt.Errorf("%d dead slots left after churn", dead)
	}
	got, err := collect(md)
	if err != nil {
		return "", err
	}
	if len(got) != md.Len() {
		return "", fmt.Errorf("iterated %d entries, length %d", len(got), md.Len())
	}
	return fmt.Sprintf("%d rounds, %d live, %d slots", rounds, m.Entries, m.Slots), nil
}

func scenarioReplacement() (string, error) {
	md := multidict.New(storage.P("a", 1), storage.P("b", 2))
	items := md.Items()
	old, err := items.Iter()
	if err != nil {
		return "", err
	}
	md.Update(storage.P("a", 10))
	if !items.Contains(storage.P("a", 10)) {
		return "", errors.New("view did not follow the new store")
	}
	p, err := old.Next()
	if err != nil {
		return "", fmt.Errorf("iterator on replaced store: %w", err)
	}
	if p != storage.P("a", 1) {
		return "", fmt.Errorf("iterator on replaced store yielded %v", p)
	}
	return "views follow, old iterators keep the old store", nil
}

func collect[K ~string, V comparable](md *multidict.MultiDict[K, V]) ([]storage.Pair[K, V], error) {
	var out []storage.Pair[K, V]
	for p, err := range md.Items().All() {
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
