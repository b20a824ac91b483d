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

package tmx

import "fmt"

// ParseError reports a document that is not well-formed XML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "tmx: malformed document: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingAttributeError reports a root element without a required attribute.
type MissingAttributeError struct {
	Name string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("tmx: map has no %q attribute", e.Name)
}

// InvalidAttributeError reports a dimension attribute that is not an integer.
type InvalidAttributeError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidAttributeError) Error() string {
	return fmt.Sprintf("tmx: map attribute %s=%q is not an integer", e.Name, e.Value)
}

func (e *InvalidAttributeError) Unwrap() error { return e.Err }

// NoLayerError reports a document without any <data> element.
type NoLayerError struct{}

func (e *NoLayerError) Error() string {
	return "tmx: no layers in map"
}
