package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"DocumentID", KeyDocumentID, "abc", DocumentID("abc")},
		{"Path", KeyPath, "api/intro.mdx", Path("api/intro.mdx")},
		{"Href", KeyHref, "./foo.mdx", Href("./foo.mdx")},
		{"Anchor", KeyAnchor, "overview", Anchor("overview")},
		{"Stage", KeyStage, "render", Stage("render")},
		{"URL", KeyURL, "https://example.com/repo.git", URL("https://example.com/repo.git")},
		{"Branch", KeyBranch, "main", Branch("main")},
		{"Commit", KeyCommit, "deadbeef", Commit("deadbeef")},
		{"Output", KeyOutput, "public/index.html", Output("public/index.html")},
		{"BuildID", KeyBuildID, "b1", BuildID("b1")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"UserAgent", KeyUserAgent, "curl/8", UserAgent("curl/8")},
		{"RemoteAddr", KeyRemoteAddr, "127.0.0.1:5000", RemoteAddr("127.0.0.1:5000")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Fatalf("%s: expected key %s got %s", c.name, c.attrKey, c.attr.Key)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Fatalf("%s: expected value %s got %s", c.name, c.attrVal, c.attr.Value.String())
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if got := Count(3); got.Key != KeyCount || got.Value.Int64() != 3 {
		t.Fatalf("unexpected count attr: %v", got)
	}
	if got := Status(404); got.Key != KeyStatus || got.Value.Int64() != 404 {
		t.Fatalf("unexpected status attr: %v", got)
	}
	if got := DurationMS(1.5); got.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr: %v", got)
	}
}

func TestErrorHelper(t *testing.T) {
	if got := Error(nil); got.Value.String() != "" {
		t.Fatalf("expected empty error value, got %q", got.Value.String())
	}
	if got := Error(errors.New("boom")); got.Value.String() != "boom" {
		t.Fatalf("expected boom, got %q", got.Value.String())
	}
}
