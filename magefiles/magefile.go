//go:build mage

// Package main contains Mage build targets for notion-publish developer tooling.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

// siteDirs lists the Jekyll directories the exporter writes into.
var siteDirs = []string{
	"_posts",
	"assets/img/posts",
}

// Init creates the site directories the exporter writes into.
func Init() error {
	for _, dir := range siteDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	fmt.Println("Site directories initialized.")
	return nil
}

const (
	binDir  = "bin"
	binName = "notion-publish"
	cmdPkg  = "./cmd/notion-publish"
)

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := run("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return run("go", "test", "-race", "./...")
}

// Export builds the CLI and exports the published pages into the current
// directory. NOTION_TOKEN and DATABASE_ID must be set, or present in .env or
// .secrets/.
func Export() error {
	mg.Deps(Init, Build)
	return run(filepath.Join(binDir, binName), "export")
}

// Stats prints Go production/test LOC and the number of exported posts and images.
func Stats() error {
	prodLines, err := countGoLines(".", false)
	if err != nil {
		return err
	}
	testLines, err := countGoLines(".", true)
	if err != nil {
		return err
	}
	posts, err := countFiles("_posts", ".md")
	if err != nil {
		return err
	}
	images, err := countFiles("assets/img/posts", ".png")
	if err != nil {
		return err
	}

	fmt.Printf("Lines of code (Go, production): %d\n", prodLines)
	fmt.Printf("Lines of code (Go, tests):      %d\n", testLines)
	fmt.Printf("Posts exported:                 %d\n", posts)
	fmt.Printf("Images localized:               %d\n", images)
	return nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// countGoLines walks the directory tree and counts non-blank lines in Go files,
// skipping the _examples reference tree. If testOnly is true, count only
// _test.go files; otherwise count non-test .go files.
func countGoLines(root string, testOnly bool) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") != testOnly {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		sc := bufio.NewScanner(bytes.NewReader(data))
		for sc.Scan() {
			if strings.TrimSpace(sc.Text()) != "" {
				total++
			}
		}
		return sc.Err()
	})
	return total, err
}

// countFiles counts files with the given extension below root. A missing root
// counts as zero.
func countFiles(root, ext string) (int, error) {
	total := 0
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ext {
			total++
		}
		return nil
	})
	return total, err
}
