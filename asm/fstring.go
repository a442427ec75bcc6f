// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// An fstring is a cursor over a source line. It keeps track of the
// column at which the remaining substring starts.
type fstring struct {
	column int    // 0-based column of start of substring
	str    string // the remaining substring of interest
}

func newFstring(str string) fstring {
	return fstring{0, str}
}

func (l fstring) String() string {
	return l.str
}

func (l fstring) consume(n int) fstring {
	return fstring{l.column + n, l.str[n:]}
}

func (l fstring) trunc(n int) fstring {
	return fstring{l.column, l.str[:n]}
}

func (l fstring) isEmpty() bool {
	return len(l.str) == 0
}

func (l fstring) startsWith(fn func(c byte) bool) bool {
	return len(l.str) > 0 && fn(l.str[0])
}

func (l fstring) startsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[0] == c
}

// startsWithFold reports whether the cursor starts with s, ignoring the
// case of ASCII letters.
func (l fstring) startsWithFold(s string) bool {
	if len(l.str) < len(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if upper(l.str[i]) != upper(s[i]) {
			return false
		}
	}
	return true
}

func (l fstring) consumeWhitespace() fstring {
	return l.consume(l.scanWhile(whitespace))
}

func (l fstring) scanWhile(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && fn(l.str[i]); i++ {
	}
	return i
}

func (l fstring) scanUntil(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && !fn(l.str[i]); i++ {
	}
	return i
}

func (l fstring) consumeWhile(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanWhile(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

func (l fstring) consumeUntil(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanUntil(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

func (l fstring) consumeUntilChar(c byte) (consumed, remain fstring) {
	return l.consumeUntil(func(b byte) bool { return b == c })
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t'
}

func labelEnd(c byte) bool {
	return whitespace(c) || c == ':'
}

func alpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func decimal(c byte) bool {
	return (c >= '0' && c <= '9')
}

func comment(c byte) bool {
	return c == ';'
}

func hexadecimal(c byte) bool {
	return decimal(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func octal(c byte) bool {
	return c >= '0' && c <= '7'
}

func binarynum(c byte) bool {
	return c == '0' || c == '1'
}

func labelStartChar(c byte) bool {
	return alpha(c) || c == '_'
}

func labelChar(c byte) bool {
	return alpha(c) || decimal(c) || c == '_'
}

func stringQuote(c byte) bool {
	return c == '"' || c == '\''
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
