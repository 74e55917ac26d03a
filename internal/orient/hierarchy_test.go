package orient

import (
	"testing"

	"joint-orient/internal/jointcfg"
	"joint-orient/internal/scene"
)

func handleSet(hs []scene.Handle) map[scene.Handle]bool {
	m := make(map[scene.Handle]bool, len(hs))
	for _, h := range hs {
		m[h] = true
	}
	return m
}

func TestOrientHierarchyVisitsEverything(t *testing.T) {
	r := newRig(t)
	e := New(r.s, Options{Logger: quiet})
	configure(t, r.s, r.elbow, triangle)
	configure(t, r.s, r.wrist, nil)
	configure(t, r.s, r.thumb, func(c *jointcfg.Config) { c.Active = false })

	before := r.s.Len()
	rep := e.OrientHierarchy(nil, false)

	//1.- Every node, helpers included, is visited exactly once in pre-order.
	want := []scene.Handle{r.shoulder, r.elbow, r.group, r.wrist, r.hand, r.thumb}
	if len(rep.Visited) != len(want) {
		t.Fatalf("visited %d nodes, want %d", len(rep.Visited), len(want))
	}
	for i := range want {
		if rep.Visited[i] != want[i] {
			t.Fatalf("visit %d = %s, want %s", i, r.s.Name(rep.Visited[i]), r.s.Name(want[i]))
		}
	}

	//2.- Only the configured, active joints are oriented.
	oriented := handleSet(rep.Oriented)
	if len(oriented) != 2 || !oriented[r.elbow] || !oriented[r.wrist] {
		t.Fatalf("oriented = %v", rep.Oriented)
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0] != r.thumb {
		t.Fatalf("skipped = %v", rep.Skipped)
	}
	if len(rep.Failed) != 0 {
		t.Fatalf("failed = %+v", rep.Failed)
	}
	unconfigured := handleSet(rep.Unconfigured)
	if len(unconfigured) != 2 || !unconfigured[r.shoulder] || !unconfigured[r.hand] {
		t.Fatalf("unconfigured = %v", rep.Unconfigured)
	}
	if r.s.Len() != before {
		t.Fatalf("traversal left %d temporary nodes", r.s.Len()-before)
	}
}

func TestOrientHierarchyForceDefaults(t *testing.T) {
	r := newRig(t)
	e := New(r.s, Options{Logger: quiet})

	rep := e.OrientHierarchy([]scene.Handle{r.elbow}, true)

	if len(rep.Unconfigured) != 0 {
		t.Fatalf("unconfigured = %v, want none when forcing defaults", rep.Unconfigured)
	}
	for _, h := range []scene.Handle{r.elbow, r.wrist, r.hand, r.thumb} {
		if !jointcfg.Has(r.s, h) {
			t.Fatalf("%s did not get default settings", r.s.Name(h))
		}
	}
	if jointcfg.Has(r.s, r.shoulder) || jointcfg.Has(r.s, r.group) {
		t.Fatal("nodes outside the roots or helpers were configured")
	}
	if got := len(rep.Oriented) + len(rep.Failed); got != 4 {
		t.Fatalf("oriented+failed = %d, want 4 joints", got)
	}
}

func TestOrientHierarchyRootWithoutParent(t *testing.T) {
	r := newRig(t)
	e := New(r.s, Options{Logger: quiet})
	configure(t, r.s, r.shoulder, nil) // localParent needs a parent

	rep := e.OrientHierarchy(nil, false)
	if len(rep.Failed) != 1 || rep.Failed[0].Joint != r.shoulder {
		t.Fatalf("failed = %+v, want shoulder", rep.Failed)
	}
	if len(rep.Visited) != 6 {
		t.Fatalf("traversal stopped early: visited %d", len(rep.Visited))
	}
}
