/*
   Copyright (c) Utkan Güngördü <utkan@freeconsole.org>

   This program is free software; you can redistribute it and/or modify
   it under the terms of the GNU General Public License as
   published by the Free Software Foundation; either version 3 or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of

   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the

   GNU General Public License for more details


   You should have received a copy of the GNU General Public
   License along with this program; if not, write to the
   Free Software Foundation, Inc.,
   51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.
*/

/*
  Converts the TMX maps of a directory into one array literal of base-32
  records, printed on stdout:

    ["<w><h><cells>","<w><h><cells>"];

  Each record holds the map width and height followed by one character per
  tile of the first layer, row-major. Every value uses one digit of
  0-9A-V; values above 31 are clamped to V.

  Without arguments the directory holding the binary is converted.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/salviati/tmx2b32/convert"
	"github.com/salviati/tmx2b32/internal/config"
	"github.com/salviati/tmx2b32/internal/logging"
)

const version = "0.1.0"

type flags struct {
	configPath     string
	dir            string
	ext            string
	sort           bool
	keepGoing      bool
	jobs           int
	stripFlipFlags bool
	watch          bool
	logLevel       string
	version        bool
}

func buildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	return "unknown"
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "tmx2b32 [dir]",
		Short:         "Pack TMX maps into base-32 strings",
		Long:          `Convert every TMX map in a directory into a base-32 record and print them as one array literal.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.version {
				fmt.Fprintf(cmd.OutOrStdout(), "tmx2b32 %s\nBuilt: %s\n", version, buildTimestamp())
				return nil
			}
			return run(cmd, args, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file")
	fl.StringVarP(&f.dir, "dir", "d", "", "Directory holding the maps (defaults to the binary's directory)")
	fl.StringVar(&f.ext, "ext", convert.DefaultExt, "Extension of the map files")
	fl.BoolVar(&f.sort, "sort", false, "Order records by file name instead of directory order")
	fl.BoolVarP(&f.keepGoing, "keep-going", "k", false, "Skip maps that fail to convert")
	fl.IntVarP(&f.jobs, "jobs", "j", 1, "Number of maps converted in parallel")
	fl.BoolVar(&f.stripFlipFlags, "strip-flip-flags", false, "Clear Tiled flip bits from tile IDs before encoding")
	fl.BoolVarP(&f.watch, "watch", "w", false, "Print again whenever a map changes")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	fl.BoolVarP(&f.version, "version", "V", false, "Show version information")

	return cmd
}

func run(cmd *cobra.Command, args []string, f *flags) error {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}

	fl := cmd.Flags()
	if fl.Changed("dir") {
		cfg.Dir = f.dir
	}
	if len(args) == 1 {
		cfg.Dir = args[0]
	}
	if fl.Changed("ext") {
		cfg.Ext = f.ext
	}
	if fl.Changed("sort") {
		cfg.Sort = f.sort
	}
	if fl.Changed("keep-going") {
		cfg.KeepGoing = f.keepGoing
	}
	if fl.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if fl.Changed("strip-flip-flags") {
		cfg.StripFlipFlags = f.stripFlipFlags
	}
	if fl.Changed("watch") {
		cfg.Watch = f.watch
	}
	if fl.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Dir == "" {
		if cfg.Dir, err = config.ExecutableDir(); err != nil {
			return err
		}
	}

	logger := logging.NewLogger("tmx2b32", cfg.LogLevel, cmd.ErrOrStderr())
	logger.Debug("starting", "dir", cfg.Dir, "ext", cfg.Ext, "jobs", cfg.Jobs)

	opts := convert.Options{
		Dir:            cfg.Dir,
		Ext:            cfg.Ext,
		Sort:           cfg.Sort,
		KeepGoing:      cfg.KeepGoing,
		Jobs:           cfg.Jobs,
		StripFlipFlags: cfg.StripFlipFlags,
		Logger:         logger,
	}

	if cfg.Watch {
		return convert.Watch(cmd.Context(), opts, cmd.OutOrStdout())
	}
	return convert.Run(cmd.Context(), opts, cmd.OutOrStdout())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "tmx2b32:", err)
		stop()
		os.Exit(1)
	}
}
