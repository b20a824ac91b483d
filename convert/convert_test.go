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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salviati/tmx2b32/b32"
	"github.com/salviati/tmx2b32/tmx"
)

func csvMap(width, height int, csv string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="%d" height="%d" tilewidth="8" tileheight="8">
 <layer id="1" name="tiles" width="%d" height="%d">
  <data encoding="csv">
%s
</data>
 </layer>
</map>
`, width, height, width, height, csv)
}

func writeMap(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "two by one",
			content:  csvMap(2, 1, "3,5"),
			expected: `"2135"`,
		},
		{
			name:     "multi row",
			content:  csvMap(3, 2, "0,1,2,\n10,20,31"),
			expected: `"32012AKV"`,
		},
		{
			name:     "dimension 31",
			content:  `<map width="31" height="31"><data>1</data></map>`,
			expected: `"VV1"`,
		},
		{
			// width and height past 31 are clamped, not rejected
			name:     "dimension 32",
			content:  `<map width="32" height="40"><data>1</data></map>`,
			expected: `"VV1"`,
		},
		{
			name:     "empty data block",
			content:  `<map width="4" height="4"><layer><data encoding="csv"></data></layer></map>`,
			expected: `"44"`,
		},
		{
			name:     "cell count mismatch tolerated",
			content:  csvMap(4, 4, "1,2"),
			expected: `"4412"`,
		},
		{
			name: "later layers ignored",
			content: `<map width="1" height="1">
  <layer><data encoding="csv">7</data></layer>
  <layer><data encoding="csv">8</data></layer>
</map>`,
			expected: `"117"`,
		},
		{
			name:     "xml encoded tiles",
			content:  `<map width="2" height="1"><layer><data><tile gid="12"/><tile gid="99"/></data></layer></map>`,
			expected: `"21CV"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeMap(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".tmx", tt.content)

			rec, err := File(path, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rec)
		})
	}
}

func TestFile_Deterministic(t *testing.T) {
	path := writeMap(t, t.TempDir(), "level.tmx", csvMap(3, 3, "1,2,3,\n4,5,6,\n7,8,9"))

	first, err := File(path, Options{})
	require.NoError(t, err)
	second, err := File(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2+2+9)
}

func TestFile_StripFlipFlags(t *testing.T) {
	flipped := fmt.Sprint(tmx.GIDHorizontalFlip | 5)
	path := writeMap(t, t.TempDir(), "flip.tmx", csvMap(2, 1, "1,"+flipped))

	rec, err := File(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, `"211V"`, rec)

	rec, err = File(path, Options{StripFlipFlags: true})
	require.NoError(t, err)
	assert.Equal(t, `"2115"`, rec)
}

func TestFile_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("malformed cell", func(t *testing.T) {
		path := writeMap(t, dir, "bad_cell.tmx", csvMap(3, 1, "3,x,5"))
		rec, err := File(path, Options{})
		assert.Empty(t, rec)

		var cellErr *b32.MalformedCellError
		require.True(t, errors.As(err, &cellErr), "got %v", err)
		assert.Equal(t, "x", cellErr.Token)

		var fileErr *FileError
		require.True(t, errors.As(err, &fileErr))
		assert.Equal(t, path, fileErr.Path)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("no layer", func(t *testing.T) {
		path := writeMap(t, dir, "no_layer.tmx", `<map width="1" height="1"><tileset firstgid="1"/></map>`)
		_, err := File(path, Options{})

		var noLayer *tmx.NoLayerError
		assert.True(t, errors.As(err, &noLayer), "got %v", err)
	})

	t.Run("parse error", func(t *testing.T) {
		path := writeMap(t, dir, "broken.tmx", `<map width="1" height="1"><data>1</map>`)
		_, err := File(path, Options{})

		var parseErr *tmx.ParseError
		assert.True(t, errors.As(err, &parseErr), "got %v", err)
	})

	t.Run("missing attribute", func(t *testing.T) {
		path := writeMap(t, dir, "no_height.tmx", `<map width="1"><data>1</data></map>`)
		_, err := File(path, Options{})

		var missing *tmx.MissingAttributeError
		require.True(t, errors.As(err, &missing), "got %v", err)
		assert.Equal(t, "height", missing.Name)
	})

	t.Run("bad tile gid", func(t *testing.T) {
		path := writeMap(t, dir, "bad_gid.tmx", `<map width="1" height="1"><layer><data><tile gid="abc"/></data></layer></map>`)
		_, err := File(path, Options{})

		var cellErr *b32.MalformedCellError
		assert.True(t, errors.As(err, &cellErr), "got %v", err)
		var parseErr *tmx.ParseError
		assert.False(t, errors.As(err, &parseErr))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := File(filepath.Join(dir, "nope.tmx"), Options{})
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
