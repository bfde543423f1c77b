/*
 * S370 - Console commands
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

package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/rcornwell/S370stor/command/command"
	"github.com/rcornwell/S370stor/emu/cpu"
	"github.com/rcornwell/S370stor/emu/storview"
)

var cmdList []cmd

func init() {
	cmdList = []cmd{
		{Name: "r", Min: 1, Help: "r addr[-addr2|.len|=hex]  display or alter real storage", Process: realStorage},
		{Name: "a", Min: 1, Help: "a addr[-addr2|.len|=hex]  display or alter absolute storage", Process: absStorage},
		{Name: "v", Min: 1, Help: "v [P|S|H]addr[-addr2|.len|=hex]  display or alter virtual storage", Process: virtStorage},
		{Name: "u", Min: 1, Help: "u [R|V|P|H]addr[-addr2|.len]  disassemble storage", Process: unassemble},
		{Name: "t", Min: 1, Help: "t [R|V|P|S|H]addr  translate and display one line", Process: translate},
		{Name: "gpr", Min: 1, Help: "gpr  display general registers", Process: regs(generalRegs)},
		{Name: "cr", Min: 2, Help: "cr  display control registers", Process: regs(controlRegs)},
		{Name: "ar", Min: 2, Help: "ar  display access registers", Process: regs(accessRegs)},
		{Name: "fpr", Min: 1, Help: "fpr  display floating point registers", Process: regs(floatRegs)},
		{Name: "psw", Min: 2, Help: "psw  display program status word", Process: regs(pswLine)},
		{Name: "cpu", Min: 2, Help: "cpu [addr]  select or show target CPU", Process: selectCPU, Complete: cpuComplete},
		{Name: "start", Min: 3, Help: "start  start all CPUs", Process: start},
		{Name: "stop", Min: 3, Help: "stop  stop all CPUs", Process: stop},
		{Name: "quit", Min: 4, Help: "quit  leave program", Process: quit},
		{Name: "help", Min: 1, Help: "help [command]  list commands", Process: help},
	}
}

var ErrRunning = errors.New("can't alter storage while CPU is running")

// Refuse alteration while CPUs run.
func checkAlter(text string, session *command.Session) error {
	if strings.Contains(text, "=") && session.Core.IsRunning() {
		return ErrRunning
	}
	return nil
}

// Handle r and a commands.
func realOrAbs(line *cmdLine, session *command.Session, kind byte) (bool, error) {
	text := line.rest()
	if err := checkAlter(text, session); err != nil {
		return false, err
	}
	live, err := session.Live()
	if err != nil {
		return false, err
	}
	return false, reported(storview.AlterDisplayRealOrAbs(session.Core, session.Console, live, kind, text))
}

// Display or alter real storage.
func realStorage(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Real")
	return realOrAbs(line, session, 'R')
}

// Display or alter absolute storage.
func absStorage(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Absolute")
	return realOrAbs(line, session, 'A')
}

// Display or alter virtual storage.
func virtStorage(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Virtual")
	text := line.rest()
	if err := checkAlter(text, session); err != nil {
		return false, err
	}
	live, err := session.Live()
	if err != nil {
		return false, err
	}
	return false, reported(storview.AlterDisplayVirt(session.Core, session.Console, live, text))
}

// Disassemble storage.
func unassemble(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Unassemble")
	live, err := session.Live()
	if err != nil {
		return false, err
	}
	return false, reported(storview.DisasmStor(session.Core, session.Console, live, line.rest()))
}

// Translate one address and show a line of storage.
func translate(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Translate")
	text := line.rest()
	arn := 0
	realAddr := false
	if text != "" {
		switch unicode.ToUpper(rune(text[0])) {
		case 'R':
			realAddr = true
		case 'P':
			arn = cpu.UsePrimarySpace
		case 'S':
			arn = cpu.UseSecondarySpace
		case 'H':
			arn = cpu.UseHomeSpace
		}
		if strings.ContainsRune("RVPSH", unicode.ToUpper(rune(text[0]))) {
			text = strings.TrimSpace(text[1:])
		}
	}

	addr, err := strconv.ParseUint(text, 16, 64)
	if err != nil || addr > session.Core.Profile().MaxAddr {
		return false, errors.New("invalid address: " + text)
	}
	live, err := session.Live()
	if err != nil {
		return false, err
	}

	msg := storview.Message{ID: storview.MsgDisplay, Severity: storview.Info}
	if realAddr {
		msg.Text = storview.DisplayReal(session.Core, live, addr, true)
	} else {
		msg.Text, err = storview.DisplayVirt(session.Core, live, addr, arn, cpu.AccessHW)
		if err != nil {
			msg.Severity = storview.Error
		}
	}
	session.Console.Write(msg)
	return false, reported(err)
}

func generalRegs(ctx *cpu.Context) []string { return ctx.GeneralRegs(false) }
func controlRegs(ctx *cpu.Context) []string { return ctx.ControlRegs(false) }
func accessRegs(ctx *cpu.Context) []string  { return ctx.AccessRegs(false) }
func floatRegs(ctx *cpu.Context) []string   { return ctx.FloatRegs(false) }
func pswLine(ctx *cpu.Context) []string     { return []string{ctx.PSWString()} }

// Display registers from a working copy of the selected CPU.
func regs(format func(*cpu.Context) []string) func(*cmdLine, *command.Session) (bool, error) {
	return func(line *cmdLine, session *command.Session) (bool, error) {
		line.skipSpace()
		if !line.isEOL() {
			return false, errors.New("register display takes no operands")
		}
		live, err := session.Live()
		if err != nil {
			return false, err
		}
		pool := session.Core.Snapshots()
		ctx, err := pool.Snapshot(live)
		if err != nil {
			return false, err
		}
		defer pool.Release(ctx)
		for _, text := range format(ctx) {
			session.Console.Write(storview.Message{ID: storview.MsgRegs, Severity: storview.Info, Text: text})
		}
		return false, nil
	}
}

// Select CPU for following commands.
func selectCPU(line *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command CPU")
	line.skipSpace()
	if line.isEOL() {
		for _, ctx := range session.Core.CPUs() {
			mark := " "
			if ctx.CPUAddr == session.Selected() {
				mark = "*"
			}
			state := "stopped"
			ctx.Lock()
			if ctx.Running {
				state = "running"
			}
			guest := ctx.SIEMode()
			ctx.Unlock()
			if guest {
				state += " SIE guest"
			}
			session.Println(fmt.Sprintf("%s%s %s %s", mark, ctx.Tag(), session.Core.Profile().Name, state))
		}
		return false, nil
	}
	addr, err := line.getHex()
	if err != nil || addr > 0xffff {
		return false, errors.New("CPU address must be hex: " + line.rest())
	}
	return false, session.Select(uint16(addr))
}

// Complete CPU addresses.
func cpuComplete(line *cmdLine, session *command.Session) []string {
	line.skipSpace()
	leading := line.line[:line.pos]
	prefix := strings.ToUpper(line.rest())
	matches := []string{}
	for _, ctx := range session.Core.CPUs() {
		addr := strconv.FormatUint(uint64(ctx.CPUAddr), 16)
		addr = strings.ToUpper(addr)
		if strings.HasPrefix(addr, prefix) {
			matches = append(matches, leading+addr)
		}
	}
	return matches
}

// Start the CPUs.
func start(_ *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Start")
	session.Core.SendStart()
	return false, nil
}

// Stop the CPUs.
func stop(_ *cmdLine, session *command.Session) (bool, error) {
	slog.Debug("Command Stop")
	session.Core.SendStop()
	return false, nil
}

// Handle commands that quit simulation.
func quit(_ *cmdLine, _ *command.Session) (bool, error) {
	slog.Debug("Command Quit")
	return true, nil
}

// List commands.
func help(line *cmdLine, session *command.Session) (bool, error) {
	name := line.getWord()
	list := cmdList
	if name != "" {
		list = matchList(name)
		if len(list) == 0 {
			return false, errors.New("command not found: " + name)
		}
	}
	for _, c := range list {
		session.Println(c.Help)
	}
	return false, nil
}
