package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/agentic-research/promptc/internal/compiler"
)

var (
	flagOut    string
	flagMode   string
	flagCheck  bool
	flagConfig string
)

func init() {
	compileCmd.Flags().StringVarP(&flagOut, "out", "o", "", "Directory to collect compiled artifacts in")
	compileCmd.Flags().StringVar(&flagMode, "mode", "", "Interpolation emission mode: normalize or preserve")
	compileCmd.Flags().BoolVar(&flagCheck, "check", false, "Validate sources without writing output")
	compileCmd.Flags().StringVar(&flagConfig, "config", "promptc.yaml", "Project config file")
	rootCmd.AddCommand(compileCmd)
}

var compileCmd = &cobra.Command{
	Use:   "compile [patterns...]",
	Short: "Compile authoring sources matched by the patterns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := osfs.New("/")
		logger := newLogger(flagLogLevel, flagLogFormat, os.Stderr)

		cfgPath, err := filepath.Abs(flagConfig)
		if err != nil {
			return err
		}
		cfg, err := compiler.LoadConfig(fs, cfgPath)
		if err != nil {
			return err
		}
		if flagMode != "" {
			cfg.Mode = flagMode
		}
		if flagOut != "" {
			cfg.Out = flagOut
		}
		mode, err := cfg.InterpolationMode()
		if err != nil {
			return err
		}

		opts := compiler.Options{Interpolation: mode}
		if cfg.Out != "" {
			if opts.OutDir, err = filepath.Abs(cfg.Out); err != nil {
				return err
			}
		}

		patterns := make([]string, 0, len(args))
		for _, a := range args {
			abs, err := filepath.Abs(a)
			if err != nil {
				return err
			}
			patterns = append(patterns, abs)
		}

		c := compiler.New(fs, logger, opts)
		arts, errs := c.CompileAll(patterns)
		for _, e := range errs {
			color.New(color.FgRed).Fprintf(os.Stderr, "%v\n", e)
		}

		for _, art := range arts {
			if flagCheck {
				fmt.Fprintf(os.Stdout, "%s: ok\n", art.SourcePath)
				continue
			}
			if err := util.WriteFile(fs, art.OutPath, []byte(art.Content), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", art.OutPath, err)
			}
			fmt.Fprintf(os.Stdout, "%s -> %s\n", art.SourcePath, art.OutPath)
		}

		if len(errs) > 0 {
			return fmt.Errorf("%d of %d unit(s) failed to compile", len(errs), len(errs)+len(arts))
		}
		return nil
	},
}
