/*
 * S370 - Operator message output
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package storview

import (
	"fmt"
	"io"
	"sync"
)

// Severity of a message.
type Severity byte

const (
	Info    Severity = 'I'
	Warning Severity = 'W'
	Error   Severity = 'E'
)

// Message identifiers.
const (
	msgRange    = "HHC02205" // Operand error
	msgFunction = "HHC02219" // Internal error
	msgDisasm   = "HHC02289" // Instruction display
	msgRealDump = "HHC02290" // Real or absolute storage
	msgVirtDump = "HHC02291" // Virtual storage
	msgNoStor   = "HHC02327" // No storage
	msgAddr     = "HHC02328" // Addressing exception
	msgTrans    = "HHC02329" // Translation exception
	MsgDisplay  = "HHC02326" // Single line storage display
	MsgRegs     = "HHC02269" // Register display
)

// Message is one line of operator output.
type Message struct {
	ID       string
	Severity Severity
	Text     string
}

func (m Message) String() string {
	return m.ID + string(m.Severity) + " " + m.Text
}

// Sink receives operator messages.
type Sink interface {
	Write(msg Message)
}

// Console writes messages to a stream, one per line.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	tag    string
	errors int
}

// NewConsole creates a console sink writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// SetTag sets CPU identifier printed before each message. Empty when
// only one CPU is configured.
func (c *Console) SetTag(tag string) {
	c.mu.Lock()
	c.tag = tag
	c.mu.Unlock()
}

func (c *Console) Write(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg.Severity == Error {
		c.errors++
	}
	if c.tag != "" {
		fmt.Fprintf(c.out, "%s: %s\n", c.tag, msg)
		return
	}
	fmt.Fprintln(c.out, msg)
}

// Errors returns number of error messages written.
func (c *Console) Errors() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errors
}

// Buffer collects messages in memory.
type Buffer struct {
	Messages []Message
}

func (b *Buffer) Write(msg Message) {
	b.Messages = append(b.Messages, msg)
}

// Lines returns text of each message.
func (b *Buffer) Lines() []string {
	lines := make([]string, len(b.Messages))
	for i, msg := range b.Messages {
		lines[i] = msg.Text
	}
	return lines
}

// Reset discards collected messages.
func (b *Buffer) Reset() {
	b.Messages = nil
}

func emit(out Sink, id string, sev Severity, format string, a ...interface{}) {
	out.Write(Message{ID: id, Severity: sev, Text: fmt.Sprintf(format, a...)})
}
