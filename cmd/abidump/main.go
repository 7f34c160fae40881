package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/ffi-binder/abi"
	"github.com/wippyai/ffi-binder/abi/aarch64"
	"github.com/wippyai/ffi-binder/layout"
)

// displayAddr stands in for a native entry point; the explorer only
// inspects arrangements, it never calls through them.
const displayAddr = uintptr(0x1000)

func main() {
	var (
		sigStr      = flag.String("sig", "", `Signature to arrange, e.g. "(i32, double) -> struct{f64,f64}"`)
		file        = flag.String("file", "", "YAML file with named signatures")
		upcall      = flag.Bool("upcall", false, "Show the upcall arrangement instead of the downcall")
		plain       = flag.Bool("plain", false, "Disable styled output")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			abi.SetLogger(logger)
		}
	}

	if *interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *sigStr == "" && *file == "" {
		fmt.Fprintln(os.Stderr, `Usage: abidump -sig "(i32, double) -> struct{f64,f64}" [-upcall]`)
		fmt.Fprintln(os.Stderr, "       abidump -file funcs.yaml")
		fmt.Fprintln(os.Stderr, "       abidump -i  (interactive mode)")
		os.Exit(1)
	}

	styled := !*plain && term.IsTerminal(int(os.Stdout.Fd()))

	if err := run(*sigStr, *file, *upcall, styled); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type sigFile struct {
	Functions []struct {
		Name      string `yaml:"name"`
		Signature string `yaml:"signature"`
	} `yaml:"functions"`
}

func run(sigStr, file string, upcall, styled bool) error {
	if sigStr != "" {
		return dump("", sigStr, upcall, styled)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	var sf sigFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	if len(sf.Functions) == 0 {
		return fmt.Errorf("%s declares no functions", file)
	}

	for i, f := range sf.Functions {
		if i > 0 {
			fmt.Println()
		}
		if err := dump(f.Name, f.Signature, upcall, styled); err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return nil
}

func dump(name, sigStr string, upcall, styled bool) error {
	fd, sig, err := ParseSignature(sigStr)
	if err != nil {
		return err
	}

	b, direction, err := arrange(sig, fd, upcall)
	if err != nil {
		return err
	}

	fmt.Print(renderArrangement(name, fd, b, direction, styled))
	return nil
}

func arrange(sig abi.Signature, fd layout.Func, upcall bool) (*aarch64.Bindings, string, error) {
	if upcall {
		u, err := aarch64.ArrangeUpcall(struct{}{}, sig, fd)
		if err != nil {
			return nil, "", err
		}
		return &u.Bindings, "upcall", nil
	}
	d, err := aarch64.ArrangeDowncall(displayAddr, sig, fd)
	if err != nil {
		return nil, "", err
	}
	return &d.Bindings, "downcall", nil
}
