package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/codecity/pkg/color"
	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/tree"
)

func sampleTree() (*tree.Node, metrics.Heat) {
	root := tree.BuildTree([]tree.Record{
		{Path: "a/b.txt", LOC: 10, Count: 5},
		{Path: "a/c.txt", LOC: 20, Count: 2},
		{Path: "d.txt", LOC: 5, Count: 1},
		{Path: "e.txt", LOC: 1, Count: 0},
	})
	return root, metrics.Normalize(root)
}

func TestToDOT(t *testing.T) {
	root, heat := sampleTree()
	dot := ToDOT(root, heat, Options{})

	for _, want := range []string{
		`"/" [label="/"];`,
		`"a" [label="a"];`,
		`"a/b.txt" [label="b.txt", shape=ellipse, style=filled, fillcolor="` + color.Red.Hex() + `"];`,
		`"e.txt" [label="e.txt", shape=ellipse, style=filled, fillcolor="` + color.Blue.Hex() + `"];`,
		`"/" -> "a";`,
		`"/" -> "d.txt";`,
		`"a" -> "a/c.txt";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	root, heat := sampleTree()
	dot := ToDOT(root, heat, Options{Detailed: true})

	want := `"a" [label="a\n30 lines\n7 commits"];`
	if !strings.Contains(dot, want) {
		t.Errorf("DOT missing %s\n%s", want, dot)
	}
}

func TestToDOTMaxDepth(t *testing.T) {
	root, heat := sampleTree()
	dot := ToDOT(root, heat, Options{MaxDepth: 1})

	if strings.Contains(dot, "a/b.txt") {
		t.Errorf("MaxDepth 1 should stop at a:\n%s", dot)
	}
	if !strings.Contains(dot, `"/" -> "a";`) {
		t.Errorf("MaxDepth 1 should keep root edges:\n%s", dot)
	}
}

func TestToDOTSimpleGradient(t *testing.T) {
	root, heat := sampleTree()
	dot := ToDOT(root, heat, Options{Gradient: color.SimpleHeatGradient})

	if !strings.Contains(dot, `fillcolor="`+color.Yellow.Hex()+`"`) {
		t.Errorf("coldest file should be yellow:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := normalizeViewBox(in)
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if string(got) != want {
		t.Errorf("normalizeViewBox = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if !bytes.Equal(normalizeViewBox(plain), plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	root, heat := sampleTree()
	svg, err := RenderSVG(context.Background(), ToDOT(root, heat, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("unexpected svg header: %.200s", svg)
	}
	if !bytes.Contains(svg, []byte("b.txt")) {
		t.Error("svg should contain file labels")
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected parse error")
	}
}
