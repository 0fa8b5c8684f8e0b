package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

var mediaTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".svg":  "image/svg+xml",
}

func main() {
	var (
		outDir = flag.String("out", "dist", "Output directory")
		dirs   = flag.String("dirs", "templates,static", "Comma separated source directories")
	)
	flag.Parse()

	m := newMinifier()
	for _, dir := range strings.Split(*dirs, ",") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if err := minifyTree(m, dir, *outDir); err != nil {
			log.Fatalf("Failed to minify %s: %v", dir, err)
		}
	}
	fmt.Printf("Minified assets written to %s\n", *outDir)
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	return m
}

// minifyTree mirrors srcDir under outDir, minifying known file types and
// copying everything else unchanged.
func minifyTree(m *minify.M, srcDir, outDir string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		dst := filepath.Join(outDir, path)
		mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return copyFile(path, dst)
		}
		return minifyFile(m, path, dst, mediaType)
	})
}

func minifyFile(m *minify.M, srcPath, dstPath, mediaType string) error {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	minified, err := m.Bytes(mediaType, src)
	if err != nil {
		return fmt.Errorf("minify %s: %w", srcPath, err)
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(dstPath, minified, 0644); err != nil {
		return err
	}

	ratio := 0.0
	if len(src) > 0 {
		ratio = float64(len(src)-len(minified)) / float64(len(src)) * 100
	}
	fmt.Printf("%s: %d bytes -> %d bytes (%.1f%% reduction)\n", srcPath, len(src), len(minified), ratio)
	return nil
}

func copyFile(srcPath, dstPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(dstPath, data, 0644)
}
