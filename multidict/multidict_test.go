package multidict

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"

	"multidict/storage"
)

type pair = storage.Pair[string, int]

var p = storage.P[string, int]

var h = storage.P[storage.IStr, string]

func items[K ~string, V comparable](t *testing.T, md *MultiDict[K, V]) []storage.Pair[K, V] {
	t.Helper()
	var out []storage.Pair[K, V]
	for it, err := range md.Items().All() {
		require.NoError(t, err)
		out = append(out, it)
	}
	return out
}

func requireItems[K ~string, V comparable](t *testing.T, md *MultiDict[K, V], want ...storage.Pair[K, V]) {
	t.Helper()
	if diff := cmp.Diff(want, items(t, md)); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

// -------------------------------------------------------------------------
// Reads
// -------------------------------------------------------------------------

func TestMultiDict_GetFamily(t *testing.T) {
	md := New(p("a", 1), p("b", 2), p("a", 3))

	v, ok := md.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = md.Get("z")
	require.False(t, ok)

	v, err := md.GetOne("b")
	require.NoError(t, err)
	require.Equal(t, 2, v)

	_, err = md.GetOne("z")
	var knf *KeyNotFoundError
	require.ErrorAs(t, err, &knf)
	require.Equal(t, "z", knf.Key)

	require.Equal(t, []int{1, 3}, md.GetAll("a"))
	require.Nil(t, md.GetAll("z"))
	require.True(t, md.Contains("b"))
	require.False(t, md.Contains("B"))
	require.Equal(t, 3, md.Len())
}

func TestMultiDict_String(t *testing.T) {
	md := New(p("a", 1), p("b", 2))
	require.Equal(t, `<MultiDict("a": 1, "b": 2)>`, md.String())
	require.Equal(t, `<MultiDictProxy("a": 1, "b": 2)>`, NewProxy(md).String())
	require.Equal(t, "<MultiDict()>", New[string, int]().String())
}

func TestMultiDict_Copy(t *testing.T) {
	md := New(p("a", 1))
	cp := md.Copy()
	cp.Add("b", 2)
	md.Add("c", 3)

	requireItems(t, md, p("a", 1), p("c", 3))
	requireItems(t, cp, p("a", 1), p("b", 2))
}

// -------------------------------------------------------------------------
// Mutations
// -------------------------------------------------------------------------

func TestMultiDict_AddExtend(t *testing.T) {
	md := New[string, int]()
	md.Add("a", 1)
	md.Extend(p("b", 2), p("a", 3))
	requireItems(t, md, p("a", 1), p("b", 2), p("a", 3))
}

func TestMultiDict_Set(t *testing.T) {
	md := New(p("a", 1), p("b", 2), p("a", 3), p("c", 4), p("a", 5))
	md.Set("a", 10)
	requireItems(t, md, p("a", 10), p("b", 2), p("c", 4))

	md.Set("d", 7)
	requireItems(t, md, p("a", 10), p("b", 2), p("c", 4), p("d", 7))
}

func TestMultiDict_SetKeepsFirstKeyCasing(t *testing.T) {
	md := NewCI(h("Content-Type", "text/plain"), h("content-type", "text/html"))
	md.Set("CONTENT-TYPE", "application/json")
	requireItems(t, md, h("Content-Type", "application/json"))
}

func TestMultiDict_SetDefault(t *testing.T) {
	md := New(p("a", 1))
	require.Equal(t, 1, md.SetDefault("a", 9))
	require.Equal(t, 9, md.SetDefault("b", 9))
	requireItems(t, md, p("a", 1), p("b", 9))
}

func TestMultiDict_Del(t *testing.T) {
	md := New(p("a", 1), p("b", 2), p("a", 3))
	before := md.Version()
	require.NoError(t, md.Del("a"))
	require.Greater(t, md.Version(), before)
	requireItems(t, md, p("b", 2))

	var knf *KeyNotFoundError
	require.ErrorAs(t, md.Del("a"), &knf)
}

func TestMultiDict_Pop(t *testing.T) {
	md := New(p("a", 1), p("b", 2), p("a", 3))

	v, err := md.PopOne("a")
	require.NoError(t, err)
	require.Equal(t, 1, v)
	requireItems(t, md, p("b", 2), p("a", 3))

	md.Add("a", 4)
	vs, err := md.PopAll("a")
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, vs)
	requireItems(t, md, p("b", 2))

	_, err = md.PopOne("a")
	var knf *KeyNotFoundError
	require.ErrorAs(t, err, &knf)
	_, err = md.PopAll("a")
	require.ErrorAs(t, err, &knf)
}

func TestMultiDict_PopItem(t *testing.T) {
	md := New(p("a", 1), p("b", 2), p("c", 3))
	require.NoError(t, md.Del("c"))

	got, err := md.PopItem()
	require.NoError(t, err)
	require.Equal(t, p("b", 2), got)

	got, err = md.PopItem()
	require.NoError(t, err)
	require.Equal(t, p("a", 1), got)

	_, err = md.PopItem()
	var empty *EmptyError
	require.ErrorAs(t, err, &empty)
}

func TestMultiDict_Clear(t *testing.T) {
	md := New(p("a", 1))
	keys := md.Keys()
	md.Clear()
	require.Zero(t, md.Len())
	require.Zero(t, keys.Len())
	require.False(t, md.Contains("a"))
}

func TestMultiDict_Update(t *testing.T) {
	md := New(p("a", 1), p("b", 2), p("a", 3), p("c", 4), p("a", 5))
	md.Update(p("a", 10), p("d", 6), p("a", 11), p("c", 40), p("c", 41))

	requireItems(t, md,
		p("a", 10), p("b", 2), p("a", 11), p("c", 40),
		p("d", 6), p("c", 41),
	)
}

func TestMultiDict_UpdateKeepsStoredKeyCasing(t *testing.T) {
	md := NewCI(h("Accept", "*/*"), h("Host", "a"))
	md.Update(h("ACCEPT", "text/html"), h("X-New", "1"))
	requireItems(t, md, h("Accept", "text/html"), h("Host", "a"), h("X-New", "1"))
}

func TestMultiDict_UpdateSwapsStore(t *testing.T) {
	md := New(p("a", 1), p("b", 2))
	items := md.Items()
	oldStore := md.CurrentStore()
	oldIter, err := items.Iter()
	require.NoError(t, err)

	md.Update(p("b", 20), p("c", 3))

	require.NotSame(t, oldStore, md.CurrentStore())
	require.Equal(t, 3, items.Len())
	require.True(t, items.Contains(p("b", 20)))
	require.False(t, items.Contains(p("b", 2)))

	// The iterator still walks the replaced store, which nothing mutated.
	var got []pair
	for {
		it, err := oldIter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		require.NoError(t, err)
		got = append(got, it)
	}
	require.Equal(t, []pair{p("a", 1), p("b", 2)}, got)
}

func TestMultiDict_UpdateEmptyIsNoop(t *testing.T) {
	md := New(p("a", 1))
	store := md.CurrentStore()
	md.Update()
	require.Same(t, store, md.CurrentStore())
}

// -------------------------------------------------------------------------
// Case-insensitive flavour
// -------------------------------------------------------------------------

func TestMultiDict_CaseInsensitive(t *testing.T) {
	md := NewCI(h("Set-Cookie", "a=1"), h("HOST", "example.com"))
	md.Add("set-cookie", "b=2")

	require.True(t, md.Contains("host"))
	require.Equal(t, []string{"a=1", "b=2"}, md.GetAll("SET-COOKIE"))
	requireItems(t, md,
		h("Set-Cookie", "a=1"), h("HOST", "example.com"), h("set-cookie", "b=2"))

	require.True(t, md.Keys().Contains("Host"))
	require.True(t, md.Items().Contains(h("HOST", "example.com")))
	require.False(t, md.Items().Contains(h("host", "example.com")))

	require.NoError(t, md.Del("Set-cookie"))
	requireItems(t, md, h("HOST", "example.com"))
}

// -------------------------------------------------------------------------
// Views and iterators
// -------------------------------------------------------------------------

func TestMultiDict_LiveViewFrozenIterator(t *testing.T) {
	md := New(p("a", 1))
	view := md.Items()
	it, err := view.Iter()
	require.NoError(t, err)

	md.Add("b", 2)

	require.Equal(t, 2, view.Len())
	_, err = it.Next()
	var cme *storage.ConcurrentModificationError
	require.ErrorAs(t, err, &cme)

	fresh, err := view.Iter()
	require.NoError(t, err)
	first, err := fresh.Next()
	require.NoError(t, err)
	require.Equal(t, p("a", 1), first)
}

func TestMultiDict_ItemsMembership(t *testing.T) {
	md := New(p("k", 1))
	require.True(t, md.Items().Contains(p("k", 1)))
	require.True(t, md.Items().Contains([2]any{"k", 1}))
	require.False(t, md.Items().Contains(42))
}

func TestMultiDict_IsDisjoint(t *testing.T) {
	md := New[string, int]()
	ok, err := md.Items().IsDisjoint(md.Items())
	require.NoError(t, err)
	require.True(t, ok)

	md.Add("x", 1)
	view := md.Items()
	ok, err = view.IsDisjoint(view)
	require.NoError(t, err)
	require.False(t, ok)

	other := New(p("y", 1))
	ok, err = view.IsDisjoint(other.Items())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestMultiDict_ReadsDoNotBumpVersion(t *testing.T) {
	md := New(p("a", 1), p("b", 2))
	v := md.Version()
	md.Get("a")
	md.GetAll("a")
	md.Contains("b")
	_ = md.String()
	_ = md.Keys().Contains("a")
	require.Equal(t, v, md.Version())
}

// -------------------------------------------------------------------------
// Proxy
// -------------------------------------------------------------------------

func TestProxy_ObservesChanges(t *testing.T) {
	md := NewCI(h("Accept", "*/*"))
	proxy := NewProxy(md)
	keys := proxy.Keys()

	md.Add("Host", "example.com")
	require.Equal(t, 2, proxy.Len())
	require.Equal(t, 2, keys.Len())

	v, err := proxy.GetOne("host")
	require.NoError(t, err)
	require.Equal(t, "example.com", v)

	md.Update(h("HOST", "other"))
	v, ok := proxy.Get("Host")
	require.True(t, ok)
	require.Equal(t, "other", v)
	require.True(t, proxy.Items().Contains(h("Host", "other")))

	cp := proxy.Copy()
	cp.Add("X", "1")
	require.Equal(t, 2, proxy.Len())
	require.Equal(t, []string{"*/*"}, proxy.GetAll("ACCEPT"))
	require.False(t, proxy.Contains("x"))
}
