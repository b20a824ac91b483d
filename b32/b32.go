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

// Package b32 packs tile values into base-32 digit strings, one character
// per tile.
//
// The format has five bits per cell. Values above 31 are clamped to 31 and
// negative values to 0, so the encoding is lossy for large tile IDs.
package b32

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Alphabet maps digit values 0-31 to their characters.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUV"

// Max is the largest value a single digit can hold.
const Max = len(Alphabet) - 1

var lineBreaks = strings.NewReplacer("\n", "", "\r", "")

// MalformedCellError reports a tile token that is not an integer.
type MalformedCellError struct {
	Index int    // position of the token in the layer
	Token string // token as found, before trimming
	Err   error
}

func (e *MalformedCellError) Error() string {
	return fmt.Sprintf("b32: cell %d: %q is not an integer", e.Index, e.Token)
}

func (e *MalformedCellError) Unwrap() error { return e.Err }

// Digit returns the character for v, clamped to [0, Max].
func Digit(v int64) byte {
	switch {
	case v < 0:
		v = 0
	case v > int64(Max):
		v = int64(Max)
	}
	return Alphabet[v]
}

// ParseLayer parses a comma-separated row-major tile list. Line breaks
// anywhere in csv are ignored. A blank csv holds no cells.
func ParseLayer(csv string) ([]int64, error) {
	csv = lineBreaks.Replace(csv)
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}

	tokens := strings.Split(csv, ",")
	values := make([]int64, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		// ParseInt saturates on overflow; Digit clamps the result anyway.
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &MalformedCellError{Index: i, Token: tok, Err: err}
		}
		values[i] = v
	}
	return values, nil
}

// EncodeLayer encodes a comma-separated tile list. The result has one
// character per token.
func EncodeLayer(csv string) (string, error) {
	values, err := ParseLayer(csv)
	if err != nil {
		return "", err
	}
	return EncodeValues(values), nil
}

// EncodeValues encodes already decoded tile values.
func EncodeValues(values []int64) string {
	b := make([]byte, len(values))
	for i, v := range values {
		b[i] = Digit(v)
	}
	return string(b)
}

// Record composes the quoted record for one map: width digit, height digit
// and the layer's cells.
func Record(width, height int64, cells string) string {
	var sb strings.Builder
	sb.Grow(len(cells) + 4)
	sb.WriteByte('"')
	sb.WriteByte(Digit(width))
	sb.WriteByte(Digit(height))
	sb.WriteString(cells)
	sb.WriteByte('"')
	return sb.String()
}
