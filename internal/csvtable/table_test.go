package csvtable

import (
	"strings"
	"testing"
)

func TestParse_HeaderMapIsNamedNotPositional(t *testing.T) {
	// Same data, two column orders: lookups by name must agree.
	a, err := Parse(strings.NewReader("player_id,best_pos\n10,ST\n"))
	if err != nil {
		t.Fatalf("parse a: %v", err)
	}
	b, err := Parse(strings.NewReader("best_pos,player_id\nST,10\n"))
	if err != nil {
		t.Fatalf("parse b: %v", err)
	}

	for name, tbl := range map[string]*Table{"a": a, "b": b} {
		row := tbl.Row(0)
		if got := row.String("player_id"); got != "10" {
			t.Errorf("%s: player_id = %q, want 10", name, got)
		}
		if got := row.String("best_pos"); got != "ST" {
			t.Errorf("%s: best_pos = %q, want ST", name, got)
		}
	}
}

func TestParse_StripsBOMAndSkipsBlankLines(t *testing.T) {
	tbl, err := Parse(strings.NewReader("\ufeffplayer_id,name\n1,Foo\n\n2,Bar\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !tbl.HasColumn("player_id") {
		t.Error("BOM not stripped from first column name")
	}
	if tbl.Len() != 2 {
		t.Errorf("Len = %d, want 2 (blank line must not count)", tbl.Len())
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestRow_LenientNumericParsing(t *testing.T) {
	tbl, err := Parse(strings.NewReader("a,b,c,d,e\n1.5,nan,,oops,7\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	row := tbl.Row(0)

	if v := row.Float("a"); v == nil || *v != 1.5 {
		t.Errorf("Float(a) = %v, want 1.5", v)
	}
	// nan, empty and non-numeric all coalesce to nil, not an error.
	for _, col := range []string{"b", "c", "d"} {
		if v := row.Float(col); v != nil {
			t.Errorf("Float(%s) = %v, want nil", col, *v)
		}
	}
	// Absent column is nil as well.
	if v := row.Float("zz"); v != nil {
		t.Errorf("Float(zz) = %v, want nil", *v)
	}
	if v := row.Int("e"); v == nil || *v != 7 {
		t.Errorf("Int(e) = %v, want 7", v)
	}
	if v := row.Int("a"); v == nil || *v != 1 {
		t.Errorf("Int(a) = %v, want truncated 1", v)
	}
}

func TestRow_ShortRowReadsAsAbsent(t *testing.T) {
	tbl, err := Parse(strings.NewReader("a,b,c\n1,2\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	row := tbl.Row(0)
	if v := row.StringPtr("c"); v != nil {
		t.Errorf("StringPtr(c) = %q, want nil for short row", *v)
	}
	if got := row.String("b"); got != "2" {
		t.Errorf("String(b) = %q, want 2", got)
	}
}
