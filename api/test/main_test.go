package test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/runwayshop/runway/api"
	"github.com/runwayshop/runway/core/cart"
	"github.com/runwayshop/runway/core/product"
	"github.com/runwayshop/runway/store"
	"github.com/sirupsen/logrus"
)

// TestEnv runs the full API against a file-backed snapshot store and a
// catalog built from a fixture dump. Persistence is synchronous (no
// background runner) so assertions can follow writes immediately.
type TestEnv struct {
	t      *testing.T
	Server *httptest.Server
	URL    string
}

// Fixture prices after markup: 100→350, 900→1150, 2500→3050, 15000→15700.
var fixtureDump = []product.Raw{
	{Keyword: "shoes", Title: "Canvas Low", Price: "KSh 100", Image: "a.jpg"},
	{Keyword: "shoes", Title: "Trail Boots", Price: "KSh 900", Image: "b.jpg"},
	{Keyword: "phones", Title: "Galaxy A14", Price: "KSh 2,500", Image: "c.jpg"},
	{Keyword: "laptops", Title: "Thinkpad X1", Price: "KSh 15,000", Image: "d.jpg"},
}

func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	dir := t.TempDir()

	dump, err := json.Marshal(fixtureDump)
	if err != nil {
		t.Fatalf("encoding fixture dump: %v", err)
	}
	dumpPath := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(dumpPath, dump, 0o644); err != nil {
		t.Fatalf("writing fixture dump: %v", err)
	}

	catalog, err := product.Open(log, dumpPath)
	if err != nil {
		t.Fatalf("opening catalog: %v", err)
	}

	snapshots, err := store.NewFile(filepath.Join(dir, "snapshots"))
	if err != nil {
		t.Fatalf("opening snapshot store: %v", err)
	}

	mux := api.APIMux(api.APIConfig{
		Log:      log,
		Catalog:  catalog,
		Store:    snapshots,
		Session:  scs.New(),
		CartMeta: cart.DefaultMeta(),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &TestEnv{
		t:      t,
		Server: srv,
		URL:    srv.URL,
	}
}

// Client returns a fresh client with its own cookie jar, i.e. a new
// anonymous visitor.
func (e *TestEnv) Client() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		e.t.Fatalf("creating cookie jar: %v", err)
	}

	c := e.Server.Client()
	return &http.Client{
		Transport: c.Transport,
		Jar:       jar,
	}
}

func decode(t *testing.T, r *http.Response, into any) {
	t.Helper()
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}
