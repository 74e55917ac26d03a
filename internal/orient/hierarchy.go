package orient

import (
	"log/slog"

	"joint-orient/internal/jointcfg"
	"joint-orient/internal/scene"
)

// Failure records a joint that ended in Failed.
type Failure struct {
	Joint scene.Handle
	Name  string
	Err   error
}

// Report summarizes one OrientHierarchy call.
type Report struct {
	Visited      []scene.Handle
	Oriented     []scene.Handle
	Skipped      []scene.Handle
	Failed       []Failure
	Unconfigured []scene.Handle
	Degenerate   []scene.Handle
}

// OrientHierarchy walks roots depth-first, pre-order, and runs every joint
// that carries orientation settings. With forceDefaults, unconfigured joints
// get Default settings written first. Children are always visited. Empty
// roots means every top-level node of the scene.
func (e *Engine) OrientHierarchy(roots []scene.Handle, forceDefaults bool) Report {
	var rep Report
	if len(roots) == 0 {
		roots = e.g.Roots()
	}
	stack := make([]scene.Handle, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !e.g.Exists(h) {
			continue
		}
		rep.Visited = append(rep.Visited, h)
		e.visit(h, forceDefaults, &rep)

		kids, err := e.g.Children(h)
		if err != nil {
			continue
		}
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}

	e.log.Info("hierarchy oriented",
		slog.Int("visited", len(rep.Visited)),
		slog.Int("oriented", len(rep.Oriented)),
		slog.Int("skipped", len(rep.Skipped)),
		slog.Int("failed", len(rep.Failed)))
	return rep
}

func (e *Engine) visit(h scene.Handle, forceDefaults bool, rep *Report) {
	kind, err := e.g.Kind(h)
	if err != nil || !kind.IsTransform() {
		return
	}
	if !jointcfg.Has(e.g, h) {
		if !forceDefaults {
			rep.Unconfigured = append(rep.Unconfigured, h)
			return
		}
		if err := jointcfg.SetDefaults(e.g, h); err != nil {
			rep.Failed = append(rep.Failed, Failure{Joint: h, Name: e.g.Name(h), Err: err})
			return
		}
	}
	out, err := e.Run(h)
	if err != nil {
		rep.Failed = append(rep.Failed, Failure{Joint: h, Name: e.g.Name(h), Err: err})
		return
	}
	switch out.State {
	case Baked:
		rep.Oriented = append(rep.Oriented, h)
		if out.Degenerate {
			rep.Degenerate = append(rep.Degenerate, h)
		}
	case Skipped:
		rep.Skipped = append(rep.Skipped, h)
	default:
		rep.Failed = append(rep.Failed, Failure{Joint: h, Name: e.g.Name(h), Err: out.Err})
	}
}
