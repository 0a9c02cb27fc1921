package source

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/0muji4/push-gate/internal/errors"
	"github.com/0muji4/push-gate/internal/workspace"
)

func candidates(paths ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

func TestFetcher_Plan(t *testing.T) {
	repo := workspace.NewMemRepo()
	repo.Commit("new", map[string]string{
		"b.go":            "package b\n",
		"a.go":            "package a\n",
		"docs/readme.md":  "# hi\n",
		"vendor/lib/x.go": "package x\n",
		"untouched.go":    "package u\n",
	})
	f := NewFetcher(repo, []string{"vendor/"}, []string{".go"})

	// gone.go was deleted: it is a candidate but not in the tree.
	plan, err := f.Plan(context.Background(), "new",
		candidates("b.go", "a.go", "docs/readme.md", "vendor/lib/x.go", "gone.go"))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	var paths []string
	for _, e := range plan.Entries {
		paths = append(paths, e.Path)
	}
	if diff := cmp.Diff([]string{"a.go", "b.go"}, paths); diff != "" {
		t.Errorf("planned paths, tree order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Skipping exempt path: vendor/lib/x.go"}, plan.Notices); diff != "" {
		t.Errorf("notices (-want +got):\n%s", diff)
	}
	if repo.Calls("cat-file") != 0 {
		t.Errorf("Plan must not read blobs")
	}
}

func TestFetcher_ExemptNeverFetched(t *testing.T) {
	repo := workspace.NewMemRepo()
	repo.Commit("new", map[string]string{"gen/broken.go": "package (\n"})
	f := NewFetcher(repo, []string{"gen/"}, []string{".go"})

	plan, err := f.Plan(context.Background(), "new", candidates("gen/broken.go"))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Entries) != 0 || len(plan.Notices) != 1 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestFetcher_Load(t *testing.T) {
	repo := workspace.NewMemRepo()
	repo.Commit("new", map[string]string{"a.go": "package a\r\nvar x = 1\r\n"})
	f := NewFetcher(repo, nil, []string{".go"})

	plan, err := f.Plan(context.Background(), "new", candidates("a.go"))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	unit, err := f.Load(context.Background(), plan.Entries[0])
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"package a", "var x = 1"}, unit.Lines); diff != "" {
		t.Errorf("lines (-want +got):\n%s", diff)
	}
	if string(unit.Content) != "package a\r\nvar x = 1\r\n" {
		t.Errorf("raw content must be kept verbatim, got %q", unit.Content)
	}
}

func TestFetcher_LoadBlobUnavailable(t *testing.T) {
	repo := workspace.NewMemRepo()
	repo.Commit("new", map[string]string{"a.go": "package a\n"})
	repo.FailBlob(workspace.BlobID([]byte("package a\n")), "fatal: unable to read")
	f := NewFetcher(repo, nil, []string{".go"})

	plan, err := f.Plan(context.Background(), "new", candidates("a.go"))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	_, err = f.Load(context.Background(), plan.Entries[0])
	if apperrors.CodeOf(err) != apperrors.ErrCodeBlobUnavailable {
		t.Fatalf("Load error = %v", err)
	}
}

func TestFetcher_Classify(t *testing.T) {
	f := NewFetcher(nil, []string{"vendor/", "legacy"}, []string{".go", ".yaml"})
	tests := map[string]Scope{
		"main.go":          InScope,
		"deploy/app.yaml":  InScope,
		"vendor/x/y.go":    Exempt,
		"legacy_tool.go":   Exempt,
		"README.md":        OutOfScope,
		"Makefile":         OutOfScope,
		"cmd/tool/main.GO": OutOfScope,
	}
	for p, want := range tests {
		if got := f.Classify(p); got != want {
			t.Errorf("Classify(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestParseEntry(t *testing.T) {
	e, err := ParseEntry("100644 blob 0123abcd\tdir/with space.go")
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	want := Entry{Mode: "100644", Type: "blob", ObjectID: "0123abcd", Path: "dir/with space.go"}
	if diff := cmp.Diff(want, e); diff != "" {
		t.Errorf("entry (-want +got):\n%s", diff)
	}
	if _, err := ParseEntry("100644 blob 0123abcd dir/a.go"); err == nil {
		t.Error("expected error for entry without tab")
	}
}
