// Command gendocs writes Waypoint's shell completion scripts and man pages
// for release archives.
//
// Usage:
//
//	go run ./scripts/gendocs [-completions dir] [-man dir]
//
// An empty directory skips that output.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/cli"
)

func main() {
	completionsDir := flag.String("completions", "completions", "output directory for completion scripts")
	manDir := flag.String("man", "man/man1", "output directory for man pages")
	flag.Parse()

	root := cli.NewRootCmd()
	if err := run(root, *completionsDir, *manDir); err != nil {
		fmt.Fprintln(os.Stderr, "gendocs:", err)
		os.Exit(1)
	}
}

func run(root *cobra.Command, completionsDir, manDir string) error {
	if completionsDir != "" {
		if err := writeCompletions(root, completionsDir); err != nil {
			return err
		}
	}
	if manDir != "" {
		if err := os.MkdirAll(manDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", manDir, err)
		}
		header := &doc.GenManHeader{Title: "WAYPOINT", Section: "1", Source: "Waypoint", Manual: "Waypoint Manual"}
		if err := doc.GenManTree(root, header, manDir); err != nil {
			return fmt.Errorf("generating man pages: %w", err)
		}
		fmt.Printf("man pages written to %s/\n", manDir)
	}
	return nil
}

func writeCompletions(root *cobra.Command, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	generators := map[string]func(io.Writer) error{
		"waypoint.bash": func(w io.Writer) error { return root.GenBashCompletionV2(w, true) },
		"_waypoint":     root.GenZshCompletion,
		"waypoint.fish": func(w io.Writer) error { return root.GenFishCompletion(w, true) },
		"waypoint.ps1":  root.GenPowerShellCompletionWithDesc,
	}
	for name, gen := range generators {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := gen(f); err != nil {
			f.Close()
			return fmt.Errorf("generating %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}
