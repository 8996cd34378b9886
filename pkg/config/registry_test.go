package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/wentf9/nij/pkg/location"
)

func newTestRegistry(t *testing.T, names ...string) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, name := range names {
		if err := reg.Add(name, location.MustParse("scp://"+name+"/nodeinfo.json")); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}
	return reg
}

func TestRegistryAddAndResolve(t *testing.T) {
	reg := newTestRegistry(t, "alpha", "beta")

	loc, err := reg.Resolve("beta")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if loc.Host != "beta" || loc.Path != "nodeinfo.json" {
		t.Errorf("Resolve(beta) = %+v", loc)
	}

	err = reg.Add("alpha", location.MustParse("/tmp/other.json"))
	if !errors.Is(err, ErrRemoteExists) {
		t.Errorf("Add duplicate: err = %v, want ErrRemoteExists", err)
	}
	if p, _ := reg.Path("alpha"); p != "scp://alpha/nodeinfo.json" {
		t.Errorf("duplicate Add overwrote path: %s", p)
	}

	if _, err := reg.Resolve("gamma"); !errors.Is(err, ErrNoRemote) {
		t.Errorf("Resolve missing: err = %v, want ErrNoRemote", err)
	}
}

func TestRegistryUpsert(t *testing.T) {
	reg := newTestRegistry(t, "local")
	same := location.MustParse("scp://local/nodeinfo.json")

	changed, err := reg.Upsert("local", same)
	if err != nil || changed {
		t.Errorf("Upsert same = %v, %v; want false, nil", changed, err)
	}
	changed, err = reg.Upsert("local", location.MustParse("/etc/nodeinfo.json"))
	if err != nil || !changed {
		t.Errorf("Upsert new path = %v, %v; want true, nil", changed, err)
	}
	changed, err = reg.Upsert("fresh", same)
	if err != nil || !changed {
		t.Errorf("Upsert new name = %v, %v; want true, nil", changed, err)
	}
	if got := reg.Names(); !slices.Equal(got, []string{"local", "fresh"}) {
		t.Errorf("Names = %v", got)
	}
}

func TestRegistryRemove(t *testing.T) {
	reg := newTestRegistry(t, "a", "b", "c")

	if err := reg.Remove("a", "missing"); !errors.Is(err, ErrNoRemote) {
		t.Fatalf("Remove with missing name: err = %v", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("failed Remove modified registry: %v", reg.Names())
	}
	if err := reg.Remove("a", "c"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got := reg.Names(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Names = %v", got)
	}
	if _, err := reg.Resolve("c"); !errors.Is(err, ErrNoRemote) {
		t.Errorf("removed remote still resolves")
	}
}

func TestRegistryRename(t *testing.T) {
	reg := newTestRegistry(t, "a", "b", "c")

	if err := reg.Rename("a", "b"); !errors.Is(err, ErrRemoteExists) {
		t.Errorf("Rename onto existing: err = %v", err)
	}
	if err := reg.Rename("x", "y"); !errors.Is(err, ErrNoRemote) {
		t.Errorf("Rename missing: err = %v", err)
	}
	if err := reg.Rename("a", "z"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if got := reg.Names(); !slices.Equal(got, []string{"b", "c", "z"}) {
		t.Errorf("Names = %v", got)
	}
	if p, _ := reg.Path("z"); p != "scp://a/nodeinfo.json" {
		t.Errorf("renamed path = %s", p)
	}
}

func TestRegistryFilter(t *testing.T) {
	reg := newTestRegistry(t, "eu/paris", "eu/berlin", "us/nyc", "home")

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"no patterns", nil, []string{"eu/paris", "eu/berlin", "us/nyc", "home"}},
		{"exact", []string{"home"}, []string{"home"}},
		{"star stays in segment", []string{"*"}, []string{"home"}},
		{"prefix", []string{"eu/*"}, []string{"eu/paris", "eu/berlin"}},
		{"double star", []string{"**"}, []string{"eu/paris", "eu/berlin", "us/nyc", "home"}},
		{"alternatives", []string{"{home,us/*}"}, []string{"us/nyc", "home"}},
		{"dedup keeps order", []string{"home", "eu/*", "h*"}, []string{"eu/paris", "eu/berlin", "home"}},
		{"no match", []string{"asia/*"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Filter(tt.patterns)
			if err != nil {
				t.Fatalf("Filter: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%v) = %v, want %v", tt.patterns, got, tt.want)
			}
		})
	}

	if _, err := reg.Filter([]string{"[a-"}); err == nil {
		t.Error("Filter with bad pattern: want error")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "nij.json")
	store := NewDefaultStore(path)

	reg, err := store.Load()
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("missing file should give empty registry")
	}

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Add(name, location.MustParse("/srv/"+name+".json")); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Save(reg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `{
   "infos": {
      "zeta": {
         "path": "/srv/zeta.json"
      },
      "alpha": {
         "path": "/srv/alpha.json"
      },
      "mid": {
         "path": "/srv/mid.json"
      }
   }
}
`
	if string(data) != want {
		t.Errorf("saved file =\n%s\nwant\n%s", data, want)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.Names(); !slices.Equal(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("loaded order = %v", got)
	}
}

func TestStoreKeepsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nij.json")
	orig := `{"version": 2, "infos": {"a": {"path": "/a.json"}}}`
	if err := os.WriteFile(path, []byte(orig), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewDefaultStore(path)
	reg, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if err := reg.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(reg); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `"version": 2`) {
		t.Errorf("unknown top-level key dropped:\n%s", data)
	}
	if strings.Contains(string(data), `"a"`) {
		t.Errorf("removed remote still present:\n%s", data)
	}
}

func TestStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nij.json")
	for _, content := range []string{"{not json", "[1,2]", `{"infos":{"a":{}}}`} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewDefaultStore(path).Load(); err == nil {
			t.Errorf("Load(%q): want error", content)
		}
	}
}
