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

package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Scan lists the regular files in dir whose names end with ext. Unless
// sorted is set the paths come in the order the directory yields them.
func Scan(dir, ext string, sorted bool) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("convert: read %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		// Stat follows symlinks; dangling ones are skipped like directories.
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}

	if sorted {
		slices.Sort(paths)
	}
	return paths, nil
}

// Batch converts paths and returns their records in the same order.
//
// By default the first failure cancels the remaining conversions and is
// returned alone, with no records. With opts.KeepGoing failed files are
// logged and left out, and the returned error joins every failure.
func Batch(ctx context.Context, paths []string, opts Options) ([]string, error) {
	log := opts.logger()

	records := make([]string, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := File(path, opts)
			if err != nil {
				errs[i] = err
				if opts.KeepGoing {
					log.Warn("skipping map", "path", path, "error", err)
					return nil
				}
				return err
			}
			records[i] = rec
			return nil
		})
	}
	werr := g.Wait()

	if !opts.KeepGoing {
		if werr == nil {
			return records, nil
		}
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
		return nil, werr
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ok := records[:0]
	for i, rec := range records {
		if errs[i] == nil {
			ok = append(ok, rec)
		}
	}
	return ok, errors.Join(errs...)
}

// Join wraps records into the array literal printed by Run.
func Join(records []string) string {
	return "[" + strings.Join(records, ",") + "];"
}

// Run converts every map in opts.Dir and writes the array literal to w as
// one line. Nothing is written when the batch aborts.
func Run(ctx context.Context, opts Options, w io.Writer) error {
	log := opts.logger()

	paths, err := Scan(opts.Dir, opts.ext(), opts.Sort)
	if err != nil {
		return err
	}
	log.Debug("found maps", "dir", opts.Dir, "count", len(paths))

	records, err := Batch(ctx, paths, opts)
	if err != nil && (!opts.KeepGoing || ctx.Err() != nil) {
		return err
	}

	if _, werr := fmt.Fprintln(w, Join(records)); werr != nil {
		return werr
	}
	return err
}
