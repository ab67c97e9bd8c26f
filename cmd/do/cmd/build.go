package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

// binaries built by `do build`, keyed by output name
var binaries = map[string]string{
	"server": "./cmd/server",
	"flip":   "./cmd/flip",
}

func BuildCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:       "build [server|flip]...",
		Short:     "Build the server and CLI binaries into bin/",
		ValidArgs: []string{"server", "flip"},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"server", "flip"}
			}
			for _, name := range args {
				err := build(name, binaries[name], outDir)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "bin", "output directory")
	return cmd
}

func build(name, pkg, outDir string) error {
	err := os.MkdirAll(outDir, 0o755)
	if err != nil {
		return err
	}

	out := filepath.Join(outDir, name)
	fmt.Printf("==> Building %s -> %s\n", pkg, out)

	err = run("go", "build", "-trimpath", "-o", out, pkg)
	if err != nil {
		return fmt.Errorf("go build %s failed: %w", pkg, err)
	}
	return nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	return cmd.Run()
}
