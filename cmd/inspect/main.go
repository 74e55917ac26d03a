package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"joint-orient/internal/batch"
	"joint-orient/internal/hierarchy"
	"joint-orient/internal/jointcfg"
	"joint-orient/internal/rig"
	"joint-orient/internal/scene"
)

var (
	nameStyle = lipgloss.NewStyle().Bold(true)
	cfgStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func main() {
	chain := flag.String("chain", "", "Print the joints between two names, start:end")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-chain start:end] <rig.yaml|model.bmd>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	doc, err := batch.Load(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	s, err := rig.Build(doc)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rig %q: %d nodes, %d roots\n", doc.Name, s.Len(), len(s.Roots()))

	for _, root := range s.Roots() {
		printTree(s, root, 0)
	}

	if *chain != "" {
		start, end, ok := strings.Cut(*chain, ":")
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: -chain wants start:end")
			os.Exit(2)
		}
		if err := printChain(s, start, end); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func printTree(s *scene.Scene, h scene.Handle, depth int) {
	kind, _ := s.Kind(h)
	pos, _ := s.WorldPosition(h)
	length, _ := hierarchy.Length(s, h)

	line := fmt.Sprintf("%s%s %s pos=(%.2f, %.2f, %.2f) len=%.2f",
		strings.Repeat("  ", depth), nameStyle.Render(s.Name(h)), dimStyle.Render(kind.String()),
		pos[0], pos[1], pos[2], length)
	if cfg, ok, err := jointcfg.Read(s, h); err != nil {
		line += " " + cfgStyle.Render("config error: "+err.Error())
	} else if ok {
		line += " " + cfgStyle.Render(describe(cfg))
	}
	if locked := s.Locked(h); len(locked) > 0 {
		names := make([]string, len(locked))
		for i, ch := range locked {
			names[i] = string(ch)
		}
		line += " " + dimStyle.Render("locked="+strings.Join(names, ","))
	}
	fmt.Println(line)

	kids, _ := s.Children(h)
	for _, c := range kids {
		printTree(s, c, depth+1)
	}
}

func describe(cfg jointcfg.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "aim %s at %s, up %s", cfg.AimAxis, cfg.AimAt, cfg.UpAxis)
	if cfg.AimUpAt == jointcfg.UpTrianglePlane {
		fmt.Fprintf(&b, " on plane %s/%s/%s", cfg.TriangleTop, cfg.TriangleMid, cfg.TriangleBottom)
	} else {
		fmt.Fprintf(&b, " toward %s", cfg.AimUpAt)
	}
	if cfg.AimUpAt == jointcfg.UpWorld {
		fmt.Fprintf(&b, " %s", cfg.WorldUpAxis)
	}
	if !cfg.Active {
		b.WriteString(" (inactive)")
	}
	return b.String()
}

func printChain(s *scene.Scene, start, end string) error {
	hs, ok := s.Find(start)
	if !ok {
		return fmt.Errorf("no node named %q", start)
	}
	he, ok := s.Find(end)
	if !ok {
		return fmt.Errorf("no node named %q", end)
	}
	joints, err := hierarchy.JointList(s, hs, he)
	if err != nil {
		return err
	}
	total := 0.0
	names := make([]string, len(joints))
	for i, h := range joints {
		names[i] = s.Name(h)
		if i > 0 {
			a, _ := s.WorldPosition(joints[i-1])
			b, _ := s.WorldPosition(h)
			total += b.Sub(a).Len()
		}
	}
	fmt.Printf("Chain: %s (%.2f)\n", strings.Join(names, " > "), total)
	return nil
}
