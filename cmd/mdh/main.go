package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"pkt.systems/mdh"
	"pkt.systems/version"
)

func init() {
	version.SetDefaultModule("pkt.systems/mdh")
}

func main() {
	var (
		extensionList string
		allExtensions bool
		listNames     bool
		outPath       string
		timeout       time.Duration
		watch         bool
		frontMatter   bool
		skipValidate  bool
	)

	flags := pflag.NewFlagSet("mdh", pflag.ExitOnError)
	flags.StringVarP(&extensionList, "extensions", "x", "", "Comma-separated extension names (see --list-extensions)")
	flags.BoolVar(&allExtensions, "all-extensions", false, "Enable the extension set named all (same as --extensions all)")
	flags.BoolVar(&listNames, "list-extensions", false, "List recognized extension names")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")
	flags.DurationVar(&timeout, "timeout", mdh.DefaultMaxParsingTime, "Parsing deadline (0 disables)")
	flags.BoolVarP(&watch, "watch", "w", false, "Re-render a file input whenever it changes")
	flags.BoolVar(&frontMatter, "front-matter", true, "Strip YAML/TOML front matter before rendering")
	flags.BoolVar(&skipValidate, "no-validate", false, "Skip UTF-8/binary input validation")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, version.Module(), version.Current())
		fmt.Fprintf(os.Stderr, "Usage: mdh [flags] [inputs...]\n")
		fmt.Fprintln(os.Stderr, "\nIf no input is provided, Markdown is read from stdin.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if listNames {
		for _, name := range mdh.ExtensionNames() {
			fmt.Fprintln(os.Stdout, name)
		}
		return
	}

	exts, err := mdh.ParseExtensions(extensionList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --extensions: %v\n", err)
		os.Exit(2)
	}
	if allExtensions {
		exts |= mdh.All
	}
	processor := mdh.New(exts, mdh.WithMaxParsingTime(timeout))

	args := flags.Args()
	cfg := renderConfig{
		processor:    processor,
		frontMatter:  frontMatter,
		skipValidate: skipValidate,
		outPath:      outPath,
	}

	if watch {
		if len(args) != 1 || isURL(args[0]) {
			fmt.Fprintln(os.Stderr, "--watch requires exactly one file input")
			os.Exit(2)
		}
		if err := watchAndRender(cfg, normalizePath(args[0])); err != nil {
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
			os.Exit(1)
		}
		return
	}

	source, err := readInputs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open input: %v\n", err)
		os.Exit(1)
	}
	if err := renderOnce(cfg, source); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
}

type renderConfig struct {
	processor    *mdh.Processor
	frontMatter  bool
	skipValidate bool
	outPath      string
}

func renderOnce(cfg renderConfig, source []byte) error {
	if !cfg.skipValidate {
		if err := mdh.ValidateInput(source); err != nil {
			return err
		}
	}
	if cfg.frontMatter {
		_, source = mdh.StripFrontMatter(source)
	}
	html, err := cfg.processor.MarkdownToHTML(string(source))
	if err != nil {
		return err
	}
	writer, closer, err := resolveOutput(cfg.outPath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	if _, err := io.WriteString(writer, html); err != nil {
		return err
	}
	_, err = io.WriteString(writer, "\n")
	return err
}

// watchAndRender renders once, then re-renders whenever the file changes.
// The parent directory is watched, so the watch survives editors that
// replace the file on save; events for other paths are ignored.
func watchAndRender(cfg renderConfig, path string) error {
	render := func() {
		source, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
			return
		}
		if err := renderOnce(cfg, source); err != nil {
			fmt.Fprintf(os.Stderr, "render %s: %v\n", path, err)
		}
	}
	render()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				render()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		}
	}
}

func readInputs(args []string) ([]byte, error) {
	if len(args) == 0 {
		return io.ReadAll(os.Stdin)
	}
	var combined []byte
	for _, raw := range args {
		data, err := readInput(raw)
		if err != nil {
			return nil, err
		}
		combined = append(combined, data...)
	}
	return combined, nil
}

func readInput(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty input argument")
	}
	if isURL(raw) {
		return readURL(raw)
	}
	return os.ReadFile(normalizePath(raw))
}

func isURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func readURL(raw string) ([]byte, error) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, raw, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http %s: %s", raw, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func resolveOutput(path string) (io.Writer, io.Closer, error) {
	if strings.TrimSpace(path) == "" {
		return os.Stdout, nil, nil
	}
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}
