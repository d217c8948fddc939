package introspect

import (
	"testing"

	"github.com/danthegoodman1/pgscan/typemap"
)

func TestClassifyKind(t *testing.T) {
	cases := []struct {
		typname string
		typtype string
		want    typemap.RemoteKind
	}{
		{"_int4", "b", typemap.KindArray},
		{"color", "e", typemap.KindEnum},
		{"int4", "b", typemap.KindBase},
		{"geometry", "c", typemap.KindBase},
	}
	for _, c := range cases {
		if got := classifyKind(c.typname, c.typtype); got != c.want {
			t.Errorf("classifyKind(%q, %q) = %v, want %v", c.typname, c.typtype, got, c.want)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent("public"); got != `"public"` {
		t.Errorf("quoteIdent = %q", got)
	}
}
