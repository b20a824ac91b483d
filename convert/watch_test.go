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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := strings.TrimSuffix(b.buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestWatcher_FiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, ".tmx")
	require.NoError(t, err)
	defer w.Close()

	writeMap(t, dir, "notes.txt", "ignored")
	path := writeMap(t, dir, "level.tmx", csvMap(1, 1, "1"))

	select {
	case name := <-w.Events:
		assert.Equal(t, path, name)
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for the map file")
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), ".tmx")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	// Events is closed once the pump exits
	for range w.Events {
	}
}

func TestWatch_RerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "a.tmx", csvMap(1, 1, "1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Options{Dir: dir, Sort: true}, &out)
	}()

	require.Eventually(t, func() bool { return len(out.lines()) >= 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, `["111"];`, out.lines()[0])

	// rename so the watcher never sees a half written map
	tmp := writeMap(t, dir, "b.partial", csvMap(1, 1, "2"))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, "b.tmx")))
	require.Eventually(t, func() bool {
		lines := out.lines()
		return len(lines) >= 2 && lines[len(lines)-1] == `["111","112"];`
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), Options{Dir: t.TempDir() + "/absent"}, &syncBuffer{})
	assert.Error(t, err)
}
