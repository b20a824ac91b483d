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

// Package convert turns TMX maps into base-32 records and aggregates a
// directory of maps into one array literal.
package convert

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/salviati/tmx2b32/b32"
	"github.com/salviati/tmx2b32/tmx"
)

// DefaultExt is the extension of the map files picked up by Scan.
const DefaultExt = ".tmx"

// Options controls a conversion run. The zero value converts sequentially,
// aborts on the first error and keeps tile values as stored.
type Options struct {
	Dir            string // directory scanned by Run
	Ext            string // map file extension, DefaultExt when empty
	Sort           bool   // sort file names instead of directory order
	KeepGoing      bool   // skip failed files instead of aborting
	Jobs           int    // parallel conversions, 1 when < 1
	StripFlipFlags bool   // clear Tiled flip bits before clamping
	Logger         hclog.Logger
}

func (o Options) logger() hclog.Logger {
	if o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

func (o Options) ext() string {
	if o.Ext == "" {
		return DefaultExt
	}
	return o.Ext
}

func (o Options) jobs() int {
	if o.Jobs < 1 {
		return 1
	}
	return o.Jobs
}

// FileError annotates a conversion error with the file it came from.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error { return e.Err }

// File converts the map stored at path into its quoted record.
func File(path string, opts Options) (string, error) {
	r, err := os.Open(path)
	if err != nil {
		return "", &FileError{Path: path, Err: err}
	}
	defer r.Close()

	rec, err := Reader(r, opts)
	if err != nil {
		return "", &FileError{Path: path, Err: err}
	}
	opts.logger().Debug("converted map", "path", path, "record_len", len(rec)-2)
	return rec, nil
}

// Reader converts the map read from r into its quoted record.
func Reader(r io.Reader, opts Options) (string, error) {
	m, err := tmx.ReadFirstLayer(r)
	if err != nil {
		return "", err
	}

	values, err := cells(m.Data)
	if err != nil {
		return "", err
	}
	if opts.StripFlipFlags {
		for i, v := range values {
			if v >= 0 && v <= 0xffffffff {
				values[i] = int64(tmx.GID(v).StripFlags())
			}
		}
	}

	if n := int64(len(values)); n != m.Width*m.Height {
		opts.logger().Debug("cell count does not match map size",
			"cells", n, "width", m.Width, "height", m.Height)
	}

	return b32.Record(m.Width, m.Height, b32.EncodeValues(values)), nil
}

func cells(d *tmx.Data) ([]int64, error) {
	if d.IsCSV() {
		return b32.ParseLayer(d.Text())
	}

	gids, err := d.GIDs()
	if err != nil {
		return nil, err
	}
	values := make([]int64, len(gids))
	for i, g := range gids {
		values[i] = int64(g)
	}
	return values, nil
}
