// Copyright Amazon.com Inc or its affiliates and the project contributors
// Written by James Shubin <purple@amazon.com> and the project contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.
//
// We will never require a CLA to submit a patch. All contributions follow the
// `inbound == outbound` rule.
//
// This is not an official Amazon product. Amazon does not offer support for
// this project.
//
// SPDX-License-Identifier: Apache-2.0

// Package ansi has a logging function which knows about terminals.
package ansi

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Logf is a complex printing thing to do some ansi terminal escape sequence
// magic. Messages are truncated to the width of the terminal, and a message can
// replace the previous one if it starts with one of the Prefixes.
type Logf struct {
	// Prefix is a prefix to append to each message. You can leave this
	// empty.
	Prefix string

	// Ellipsis is what is appended to the end of each message when
	// truncating. You can leave this empty.
	Ellipsis string

	// Enable specifies whether you want to turn on the line replacement or
	// not.
	Enable bool

	// Prefixes are a list of string prefixes to match when deciding to
	// delete a previous entry.
	Prefixes []string

	// Writer is where the messages go. It defaults to stderr, which is
	// also the only writer which is checked for being a terminal.
	Writer io.Writer

	mutex      *sync.Mutex
	previous   string
	isTerminal bool
	width      int
}

// Init must be called once before Logf is used. As a convenience, this returns
// the Logf function that you should use!
func (obj *Logf) Init() func(format string, v ...interface{}) {
	obj.mutex = &sync.Mutex{}
	if obj.Writer == nil {
		obj.Writer = os.Stderr
		fd := int(os.Stderr.Fd())
		obj.isTerminal = term.IsTerminal(fd)
		var err error
		obj.width, _, err = term.GetSize(fd)
		if err != nil {
			obj.isTerminal = false // keep it simple, who cares
		}
	}

	return obj.Logf
}

// Logf is the actual Logf function you should use. You must run Init before
// you use this.
func (obj *Logf) Logf(format string, v ...interface{}) {
	s := fmt.Sprintf(format, v...)
	if obj.isTerminal {
		s = Truncate(s, obj.width-len([]rune(obj.Prefix)), obj.Ellipsis)
	}
	s = s + "\n" // add the newline in

	obj.mutex.Lock() // for safety
	defer obj.mutex.Unlock()
	validPrefix := false
	for _, p := range obj.Prefixes {
		b := strings.HasPrefix(obj.previous, p)
		validPrefix = validPrefix || b
	}

	if obj.Enable && obj.isTerminal && obj.previous != "" && validPrefix {
		// move up 1 line, clear to left
		fmt.Fprint(obj.Writer, "\033[1A\033[K") // not 1K as you'd think
	}
	fmt.Fprint(obj.Writer, obj.Prefix+s) // actually print

	obj.previous = s // save for later
}

// Truncate shortens the string to at most width runes, the ellipsis included.
// If the width is too small to hold the ellipsis, the string is cut without
// one. A width below one returns the string unchanged.
func Truncate(s string, width int, ellipsis string) string {
	if width < 1 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	e := []rune(ellipsis)
	if len(e) >= width {
		return string(runes[:width])
	}
	return string(runes[:width-len(e)]) + ellipsis
}
