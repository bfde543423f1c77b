/*
 * S370 - Console reader
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

package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterh/liner"
	"github.com/rcornwell/S370stor/command/command"
	"github.com/rcornwell/S370stor/command/parser"
	"golang.org/x/term"
)

const prompt = "S370> "

// Execute runs one command line, printing errors not yet shown.
// Returns true if the command asks to quit.
func Execute(session *command.Session, line string) (bool, error) {
	quit, err := parser.ProcessCommand(line, session)
	if err != nil && !parser.IsReported(err) {
		fmt.Fprintln(session.Out, "Error: "+err.Error())
	}
	return quit, err
}

// ConsoleReader reads commands from stdin until quit or end of input.
// A terminal gets line editing, anything else is read line by line.
func ConsoleReader(session *command.Session) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		ScriptReader(session, os.Stdin)
		return
	}

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(line string) []string {
		return parser.CompleteCmd(line, session)
	})

	for {
		command, err := line.Prompt(prompt)
		if err == nil {
			line.AppendHistory(command)
			if quit, _ := Execute(session, command); quit {
				return
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return
		}
		slog.Error("error reading line: " + err.Error())
		return
	}
}

// ScriptReader runs each line of in as a command.
func ScriptReader(session *command.Session, in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if quit, _ := Execute(session, scanner.Text()); quit {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("error reading commands: " + err.Error())
	}
}
