package predicate

import (
	"testing"

	"github.com/danthegoodman1/pgscan/pgerr"
)

func TestRenderComparisonAndConjunction(t *testing.T) {
	tree := And(
		Compare("x", Gt, "10"),
		Or(IsNull("y"), Compare("z", Eq, "a")),
	)
	got, err := Render(tree)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := ` AND ("x" > '10' AND ("y" IS NULL OR "z" = 'a'))`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderNilIsEmpty(t *testing.T) {
	got, err := Render(nil)
	if err != nil || got != "" {
		t.Fatalf("got (%q, %v)", got, err)
	}
}

func TestRenderEscapesLiteral(t *testing.T) {
	got, err := Render(Compare("name", Eq, `O'Brien\`))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := ` AND "name" = 'O''Brien\\'`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderEscapesIdentifier(t *testing.T) {
	got, err := Render(IsNotNull(`weird"col`))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := ` AND "weird""col" IS NOT NULL`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderUnsupportedOperatorFails(t *testing.T) {
	_, err := Render(Compare("x", Op("LIKE"), "%a%"))
	if !pgerr.Is(err, pgerr.UnsupportedPredicate) {
		t.Fatalf("got %v, want UnsupportedPredicate", err)
	}
}

func TestRenderUnsupportedNodeKindFails(t *testing.T) {
	_, err := Render(&Node{Kind: "not_a_real_kind"})
	if !pgerr.Is(err, pgerr.UnsupportedPredicate) {
		t.Fatalf("got %v, want UnsupportedPredicate", err)
	}
}
