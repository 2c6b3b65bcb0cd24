//go:build ignore

// build.go - sheetcli build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, clean, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	binary  = "sheetcli"
	mainPkg = "./cmd/sheetcli"
	distDir = "dist"
)

// releaseTargets are the GOOS/GOARCH pairs built by -target=release
var releaseTargets = [][2]string{
	{"linux", "amd64"},
	{"linux", "arm64"},
	{"darwin", "arm64"},
	{"windows", "amd64"},
}

var (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	version := flag.String("version", "", "Version stamped into the binary (default: git describe or dev)")
	flag.Parse()

	if runtime.GOOS == "windows" {
		colorReset, colorRed, colorGreen, colorCyan = "", "", "", ""
	}

	ver := *version
	if ver == "" {
		ver = describeVersion()
	}

	start := time.Now()
	var err error
	switch *target {
	case "build":
		err = build(runtime.GOOS, runtime.GOARCH, ver, *verbose)
	case "test":
		err = runTests(*verbose)
	case "clean":
		err = os.RemoveAll(distDir)
	case "release":
		err = release(ver, *verbose)
	default:
		showHelp()
		os.Exit(1)
	}
	if err != nil {
		printError(err.Error())
		os.Exit(1)
	}
	printSuccess(fmt.Sprintf("%s completed in %s", *target, time.Since(start).Round(time.Millisecond)))
}

func build(goos, goarch, ver string, verbose bool) error {
	name := binary
	if goos == "windows" {
		name += ".exe"
	}
	out := filepath.Join(distDir, name)
	if goos != runtime.GOOS || goarch != runtime.GOARCH {
		out = filepath.Join(distDir, goos+"-"+goarch, name)
	}
	printInfo(fmt.Sprintf("Building %s (%s/%s)", out, goos, goarch))

	args := []string{"build", "-trimpath", "-ldflags", "-s -w -X main.version=" + ver, "-o", out}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, mainPkg)

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0", "GOOS="+goos, "GOARCH="+goarch)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("build %s/%s: %w", goos, goarch, err)
	}
	return nil
}

func runTests(verbose bool) error {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tests failed: %w", err)
	}
	return nil
}

func release(ver string, verbose bool) error {
	if err := os.RemoveAll(distDir); err != nil {
		return err
	}
	for _, t := range releaseTargets {
		if err := build(t[0], t[1], ver, verbose); err != nil {
			return err
		}
	}
	content := fmt.Sprintf("sheetcli %s\nBuilt: %s\n", ver, time.Now().Format("2006-01-02 15:04:05"))
	return os.WriteFile(filepath.Join(distDir, "VERSION.txt"), []byte(content), 0o644)
}

// describeVersion asks git for a tag-based version and falls back to "dev".
func describeVersion() string {
	out, err := exec.Command("git", "describe", "--tags", "--always", "--dirty").Output()
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(string(out))
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorCyan, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[OK]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func showHelp() {
	fmt.Println(`Usage: go run build.go [-target=TARGET] [-v] [-version=VERSION]

Targets:
  build    Build sheetcli for the host platform into dist/
  test     Run all Go tests with the race detector
  clean    Remove dist/
  release  Cross-compile release binaries into dist/<os>-<arch>/`)
}
