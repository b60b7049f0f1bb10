package table

import (
	"reflect"
	"strings"
	"testing"
)

type testRow struct {
	Rank int     `desc:"Rank number" alias:"rank"`
	Name string  `desc:"Operation name" alias:"name"`
	Pct  float64 `desc:"Percent busy" alias:"pct"`
}

var (
	testFormatters = DefineTableFromTags(reflect.TypeFor[testRow](), nil)
	testAliases    = map[string][]string{
		"default": []string{"rank", "name"},
		"all":     []string{"rank", "name", "pct"},
	}
)

func fieldNames(fields []FieldSpec) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func TestParseFormatSpecDefaults(t *testing.T) {
	fields, others, err := ParseFormatSpec("default", "", testFormatters, testAliases)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fieldNames(fields), []string{"rank", "name"}) {
		t.Fatal(fieldNames(fields))
	}
	if len(others) != 0 {
		t.Fatal(others)
	}
}

func TestParseFormatSpecExplicit(t *testing.T) {
	fields, others, err := ParseFormatSpec("default", "pct,csv,header", testFormatters, testAliases)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fieldNames(fields), []string{"pct"}) {
		t.Fatal(fieldNames(fields))
	}
	if !others["csv"] || !others["header"] || len(others) != 2 {
		t.Fatal(others)
	}
}

func TestParseFormatSpecAliasExpansion(t *testing.T) {
	fields, _, err := ParseFormatSpec("default", "all", testFormatters, testAliases)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(fieldNames(fields), []string{"rank", "name", "pct"}) {
		t.Fatal(fieldNames(fields))
	}
}

func TestParseFormatSpecHelp(t *testing.T) {
	fields, others, err := ParseFormatSpec("default", "help", testFormatters, testAliases)
	if err != nil {
		t.Fatal(err)
	}
	if !others["help"] {
		t.Fatal(others)
	}
	// "help" still resolves the default fields
	if !reflect.DeepEqual(fieldNames(fields), []string{"rank", "name"}) {
		t.Fatal(fieldNames(fields))
	}
}

func TestStandardFormatOptions(t *testing.T) {
	opts := StandardFormatOptions(map[string]bool{"csv": true, "header": true}, DefaultFixed)
	if !opts.Csv || opts.Named || !opts.Header || opts.Fixed {
		t.Fatalf("%+v", opts)
	}

	opts = StandardFormatOptions(map[string]bool{"csvnamed": true}, DefaultFixed)
	if !opts.Csv || !opts.Named {
		t.Fatalf("%+v", opts)
	}

	opts = StandardFormatOptions(map[string]bool{"json": true, "nodefaults": true}, DefaultFixed)
	if !opts.Json || !opts.NoDefaults || opts.Header {
		t.Fatalf("%+v", opts)
	}

	// Defaulting: fixed gets a header unless noheader, csv gets none unless header
	opts = StandardFormatOptions(map[string]bool{}, DefaultFixed)
	if !opts.Fixed || !opts.Header {
		t.Fatalf("%+v", opts)
	}
	opts = StandardFormatOptions(map[string]bool{"noheader": true}, DefaultFixed)
	if !opts.Fixed || opts.Header {
		t.Fatalf("%+v", opts)
	}
	opts = StandardFormatOptions(map[string]bool{}, DefaultCsv)
	if !opts.Csv || opts.Header {
		t.Fatalf("%+v", opts)
	}

	opts = StandardFormatOptions(map[string]bool{"tag:hello": true}, DefaultFixed)
	if opts.Tag != "hello" {
		t.Fatalf("%+v", opts)
	}
}

func formatToString(spec string, def DefaultFormat, data []any) string {
	fields, others, _ := ParseFormatSpec("default", spec, testFormatters, testAliases)
	opts := StandardFormatOptions(others, def)
	var out strings.Builder
	FormatData(&out, fields, testFormatters, opts, data)
	return out.String()
}

func TestFormatFixed(t *testing.T) {
	data := []any{
		&testRow{Rank: 1, Name: "gemm", Pct: 12.5},
		&testRow{Rank: 10, Name: "x", Pct: 0},
	}
	expect := "rank  name\n1     gemm\n10    x\n"
	if s := formatToString("", DefaultFixed, data); s != expect {
		t.Fatalf("fixed %q", s)
	}
}

func TestFormatCsv(t *testing.T) {
	data := []any{
		&testRow{Rank: 1, Name: "gemm", Pct: 12.5},
	}
	expect := "rank,name,pct\n1,gemm,12.5\n"
	if s := formatToString("all,csv,header", DefaultFixed, data); s != expect {
		t.Fatalf("csv %q", s)
	}
}

func TestFormatCsvNamedNoDefaults(t *testing.T) {
	data := []any{
		&testRow{Rank: 1, Name: "gemm", Pct: 0},
	}
	// Zero pct is dropped entirely under csvnamed+nodefaults
	expect := "rank=1,name=gemm\n"
	if s := formatToString("all,csvnamed,nodefaults", DefaultFixed, data); s != expect {
		t.Fatalf("csvnamed %q", s)
	}
}

func TestFormatJson(t *testing.T) {
	data := []any{
		&testRow{Rank: 1, Name: "gemm", Pct: 12.5},
		&testRow{Rank: 2, Name: "sum", Pct: 7},
	}
	expect := `[{"rank":"1","name":"gemm"},{"rank":"2","name":"sum"}]`
	if s := formatToString("rank,name,json", DefaultFixed, data); s != expect {
		t.Fatalf("json %q", s)
	}
}

func TestFormatAwk(t *testing.T) {
	data := []any{
		&testRow{Rank: 1, Name: "a b", Pct: 12.5},
	}
	expect := "1 a_b\n"
	if s := formatToString("rank,name,awk", DefaultFixed, data); s != expect {
		t.Fatalf("awk %q", s)
	}
}

func TestQuoteJson(t *testing.T) {
	if s := QuoteJson("plain"); s != "plain" {
		t.Fatal(s)
	}
	if s := QuoteJson("say \"hi\""); s != "say \\\"hi\\\"" {
		t.Fatal(s)
	}
	if s := QuoteJson("a\nb"); s != "a b" {
		t.Fatal(s)
	}
}
