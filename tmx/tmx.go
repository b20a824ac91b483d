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

// Package tmx reads the parts of a Tiled TMX file needed to pack a level
// into a string: the map dimensions and its first tile data block.
package tmx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/salviati/tmx2b32/b32"
)

const (
	GIDHorizontalFlip = 0x80000000
	GIDVerticalFlip   = 0x40000000
	GIDDiagonalFlip   = 0x20000000
	GIDFlip           = GIDHorizontalFlip | GIDVerticalFlip | GIDDiagonalFlip
	GIDMask           = 0x0fffffff
)

var (
	ErrUnknownEncoding       = errors.New("tmx: invalid encoding scheme")
	ErrUnknownCompression    = errors.New("tmx: invalid compression method")
	ErrInvalidDecodedDataLen = errors.New("tmx: invalid decoded data length")
)

var bom = []byte("\ufeff")

type GID uint32 // A global tile ID, flip flags included.

// StripFlags clears the flip and rotation bits Tiled stores in the high bits.
func (g GID) StripFlags() GID {
	return g &^ GIDFlip
}

// Map holds the root element's dimensions and the first data block of the document.
type Map struct {
	Width  int64
	Height int64
	Data   *Data
}

type Data struct {
	Encoding    string     `xml:"encoding,attr"`
	Compression string     `xml:"compression,attr"`
	RawData     []byte     `xml:",chardata"`
	DataTiles   []DataTile `xml:"tile"` // Only used when layer encoding is xml
}

// DataTile keeps the gid attribute as text so a bad value is reported as a
// malformed cell rather than a malformed document.
type DataTile struct {
	GID string `xml:"gid,attr"`
}

// Text returns the character data of the block, the CSV text for csv layers.
func (d *Data) Text() string {
	return string(d.RawData)
}

// IsCSV reports whether the block holds comma-separated text. Blocks without
// an encoding attribute and without <tile> children are read as CSV too.
func (d *Data) IsCSV() bool {
	return d.Encoding == "csv" || (d.Encoding == "" && len(d.DataTiles) == 0)
}

// GIDs decodes base64 and XML encoded blocks. CSV blocks are read through Text.
func (d *Data) GIDs() ([]GID, error) {
	switch d.Encoding {
	case "base64":
		return d.decodeBase64()
	case "": // XML "encoding"
		gids := make([]GID, len(d.DataTiles))
		for i := range d.DataTiles {
			tok := d.DataTiles[i].GID
			if tok == "" { // <tile/> is an empty cell
				continue
			}
			v, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
			if err != nil && !errors.Is(err, strconv.ErrRange) {
				return nil, &b32.MalformedCellError{Index: i, Token: tok, Err: err}
			}
			gids[i] = GID(v)
		}
		return gids, nil
	}
	return nil, ErrUnknownEncoding
}

func (d *Data) decodeBase64() ([]GID, error) {
	rawData := bytes.TrimSpace(d.RawData)
	r := bytes.NewReader(rawData)

	encr := base64.NewDecoder(base64.StdEncoding, r)

	var comr io.Reader
	switch d.Compression {
	case "gzip":
		gr, err := gzip.NewReader(encr)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		comr = gr
	case "zlib":
		zr, err := zlib.NewReader(encr)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		comr = zr
	case "":
		comr = encr
	default:
		return nil, ErrUnknownCompression
	}

	data, err := io.ReadAll(comr)
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, ErrInvalidDecodedDataLen
	}

	gids := make([]GID, len(data)/4)
	for i := range gids {
		gids[i] = GID(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return gids, nil
}

// ReadFirstLayer reads a whole TMX document from r and returns its
// dimensions and first <data> element, at any depth, in document order.
// Later data blocks are ignored but the rest of the document must still be
// well-formed.
func ReadFirstLayer(r io.Reader) (*Map, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	var (
		root  *xml.StartElement
		data  *Data
		depth int
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && root != nil {
				return nil, &ParseError{Err: errors.New("junk after document element")}
			}
			if root == nil {
				se := t.Copy()
				root = &se
			}
			if data == nil && t.Name.Local == "data" {
				data = new(Data)
				if err := d.DecodeElement(data, &t); err != nil {
					return nil, &ParseError{Err: err}
				}
				continue // DecodeElement consumed the end element
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(bytes.TrimPrefix(t, bom))) > 0 {
				return nil, &ParseError{Err: errors.New("text outside of document element")}
			}
		}
	}
	if root == nil {
		return nil, &ParseError{Err: errors.New("no element found")}
	}

	m := new(Map)
	var err error
	if m.Width, err = intAttr(root, "width"); err != nil {
		return nil, err
	}
	if m.Height, err = intAttr(root, "height"); err != nil {
		return nil, err
	}
	if data == nil {
		return nil, &NoLayerError{}
	}
	m.Data = data

	return m, nil
}

// intAttr parses an integer attribute of e. Values out of the int64 range
// saturate instead of failing.
func intAttr(e *xml.StartElement, name string) (int64, error) {
	for _, a := range e.Attr {
		if a.Name.Local != name || a.Name.Space != "" {
			continue
		}
		v, err := strconv.ParseInt(strings.TrimSpace(a.Value), 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, &InvalidAttributeError{Name: name, Value: a.Value, Err: err}
		}
		return v, nil
	}
	return 0, &MissingAttributeError{Name: name}
}
