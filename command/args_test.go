package command

import (
	"testing"
)

func TestSourceArgsExclusive(t *testing.T) {
	a := SourceArgs{DataDir: "/x", PgURI: "postgres://h/d"}
	if err := a.Validate(); err == nil {
		t.Fatal("Expected error for -data-dir with -pg-uri")
	}
	b := SourceArgs{DataDir: "/x"}
	b.Remote = "http://h:8087"
	if err := b.Validate(); err == nil {
		t.Fatal("Expected error for -data-dir with -remote")
	}
}

func TestSourceArgsRemoteRequiresRun(t *testing.T) {
	a := SourceArgs{}
	a.Remote = "http://h:8087"
	if err := a.Validate(); err == nil {
		t.Fatal("Expected error for -remote without -run")
	}
	a.Run = "run1"
	if err := a.Validate(); err != nil {
		t.Fatal(err)
	}
	if !a.Remoting {
		t.Fatal("Remoting not set")
	}
}

func TestSourceArgsRestDir(t *testing.T) {
	a := SourceArgs{}
	a.SetRestArguments([]string{"/some/dir/"})
	if err := a.Validate(); err != nil {
		t.Fatal(err)
	}
	if a.DataDir != "/some/dir" {
		t.Fatalf("DataDir: got %s", a.DataDir)
	}
	b := SourceArgs{}
	b.SetRestArguments([]string{"/a", "/b"})
	if err := b.Validate(); err == nil {
		t.Fatal("Expected error for multiple trailing directories")
	}
}

func TestReifier(t *testing.T) {
	r := NewReifier()
	r.String("run", "r 1")
	r.Bool("cross", true)
	r.Bool("nope", false)
	r.Uint("chunks", 30)
	r.RepeatableString("metric", []string{"a", "b"})
	got := r.EncodedArguments()
	want := "run=r+1&cross=true&chunks=30&metric=a&metric=b"
	if got != want {
		t.Fatalf("Expected %s, got %s", want, got)
	}
}
