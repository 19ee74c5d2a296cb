// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DataPrefix marks the lines that carry frames.
const DataPrefix = "data: "

// MaxLineSize bounds a single line. Longer lines are discarded.
const MaxLineSize = 1 << 20

// ErrLineTooLong reports a discarded oversize line. Decoding can continue.
var ErrLineTooLong = errors.New("stream line exceeds maximum size")

// Decoder splits a response body into data payloads. Lines may arrive split
// across any number of reads; a line is only emitted once its newline (or
// the end of the body) has been seen.
type Decoder struct {
	reader *bufio.Reader
	max    int
}

// NewDecoder wraps r, transcoding from charset to UTF-8. An empty or unknown
// charset is treated as UTF-8; invalid bytes become U+FFFD.
func NewDecoder(r io.Reader, charset string) *Decoder {
	enc := lookupCharset(charset)
	return &Decoder{
		reader: bufio.NewReaderSize(transform.NewReader(r, enc.NewDecoder()), 32*1024),
		max:    MaxLineSize,
	}
}

func lookupCharset(charset string) encoding.Encoding {
	if charset == "" {
		return unicode.UTF8
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		log.Printf("stream: unknown charset %q, assuming utf-8", charset)
		return unicode.UTF8
	}
	return enc
}

// Next returns the payload of the next "data: " line. Other lines are
// skipped. It returns io.EOF once the body is exhausted, and ErrLineTooLong
// for a discarded oversize line.
func (d *Decoder) Next() (string, error) {
	for {
		line, err := d.readLine()
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return "", err
		}
		if strings.HasPrefix(line, DataPrefix) {
			return line[len(DataPrefix):], nil
		}
		if err != nil {
			return "", err
		}
	}
}

// readLine returns one line without its terminator. A final unterminated
// line is returned together with io.EOF.
func (d *Decoder) readLine() (string, error) {
	var buf bytes.Buffer
	tooLong := false
	for {
		chunk, err := d.reader.ReadSlice('\n')
		if !tooLong {
			if buf.Len()+len(chunk) > d.max {
				tooLong = true
				buf.Reset()
			} else {
				buf.Write(chunk)
			}
		}
		switch {
		case err == nil:
			if tooLong {
				return "", ErrLineTooLong
			}
			return trimEOL(buf.String()), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			if tooLong {
				return "", ErrLineTooLong
			}
			return trimEOL(buf.String()), err
		}
	}
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
