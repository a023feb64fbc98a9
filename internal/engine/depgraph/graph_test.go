package depgraph

import "testing"

func TestBuildEdgesAreSymmetric(t *testing.T) {
	g := Build([]Record{
		{Name: "app", Version: "1.0.0", Ecosystem: "nodejs", Direct: true},
		{Name: "lib", Version: "2.0.0", Ecosystem: "nodejs", Parent: "app"},
		{Name: "util", Version: "0.1.0", Ecosystem: "nodejs", RequiredBy: []string{"lib", "app"}},
	})

	for _, name := range g.Names() {
		node, _ := g.Node(name)
		for child := range node.Children {
			childNode, ok := g.Node(child)
			if !ok {
				t.Fatalf("child %q of %q has no node", child, name)
			}
			if !childNode.Parents[name] {
				t.Errorf("edge %s -> %s missing reverse parent entry", name, child)
			}
		}
		for parent := range node.Parents {
			parentNode, ok := g.Node(parent)
			if !ok {
				t.Fatalf("parent %q of %q has no node", parent, name)
			}
			if !parentNode.Children[name] {
				t.Errorf("edge %s -> %s missing forward child entry", parent, name)
			}
		}
	}

	util, _ := g.Node("util")
	if len(util.Parents) != 2 {
		t.Errorf("util should have 2 parents, got %v", util.SortedParents())
	}
}

func TestBuildIgnoresDanglingReferences(t *testing.T) {
	g := Build([]Record{
		{Name: "a", Parent: "ghost"},
		{Name: "b", RequiredBy: []string{"phantom", "a"}},
	})

	a, _ := g.Node("a")
	if len(a.Parents) != 0 {
		t.Errorf("dangling parent should not link, got parents %v", a.SortedParents())
	}

	b, _ := g.Node("b")
	if len(b.Parents) != 1 || !b.Parents["a"] {
		t.Errorf("b should only link to known parent a, got %v", b.SortedParents())
	}
}

func TestBuildPreservesInputOrder(t *testing.T) {
	g := Build([]Record{
		{Name: "z", Direct: true},
		{Name: "m"},
		{Name: "a", Direct: true},
	})

	names := g.Names()
	want := []string{"z", "m", "a"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}

	direct := g.DirectNames()
	if len(direct) != 2 || direct[0] != "z" || direct[1] != "a" {
		t.Fatalf("DirectNames() = %v, want [z a]", direct)
	}
}

func TestBuildDuplicateNamesKeepFirst(t *testing.T) {
	g := Build([]Record{
		{Name: "dup", Version: "1.0.0"},
		{Name: "dup", Version: "2.0.0"},
	})

	if g.Len() != 1 {
		t.Fatalf("expected single node for duplicate name, got %d", g.Len())
	}
	n, _ := g.Node("dup")
	if n.Record.Version != "1.0.0" {
		t.Errorf("first record should win, got version %s", n.Record.Version)
	}
}

func TestEdgeCount(t *testing.T) {
	g := Build([]Record{
		{Name: "root", Direct: true},
		{Name: "mid", Parent: "root"},
		{Name: "leaf", Parent: "mid", RequiredBy: []string{"root"}},
	})
	if got := g.EdgeCount(); got != 3 {
		t.Errorf("EdgeCount = %d, want 3", got)
	}
}
