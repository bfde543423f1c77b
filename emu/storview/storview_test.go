/*
 * S370 - Storage alter and display
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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/emu/cpu"
	"github.com/rcornwell/S370stor/emu/memory"
)

type testSystem struct {
	profile *arch.Profile
	st      *memory.Storage
	pool    *cpu.SnapshotPool
}

func (s *testSystem) Profile() *arch.Profile       { return s.profile }
func (s *testSystem) Storage() *memory.Storage     { return s.st }
func (s *testSystem) Snapshots() *cpu.SnapshotPool { return s.pool }

func newSystem(size uint64) (*testSystem, *cpu.Context) {
	p := arch.Get(arch.S390)
	sys := &testSystem{profile: p, st: memory.New(size, p.KeyShift), pool: cpu.NewSnapshotPool(0)}
	return sys, cpu.NewContext(p, 0)
}

// Segment table at 1000, page table at 2000, page 0 at 5000, page 1
// invalid. Keys are cleared after building.
func newVirtSystem(t *testing.T) (*testSystem, *cpu.Context) {
	t.Helper()
	sys, ctx := newSystem(0x10000)
	ctx.PSW.DAT = true
	ctx.CR[1] = 0x1000
	for addr, value := range map[uint64]uint32{0x1000: 0x2000, 0x2000: 0x5000, 0x2004: 0x400} {
		if err := sys.st.PutWord(addr, value); err != nil {
			t.Fatalf("PutWord %x failed: %v", addr, err)
		}
	}
	for i := range uint64(16) {
		sys.st.SetKey(i<<12, 0)
	}
	return sys, ctx
}

func TestAlterReal(t *testing.T) {
	sys, ctx := newSystem(0x10000)
	out := &Buffer{}
	if err := AlterDisplayRealOrAbs(sys, out, ctx, 'r', "1000=C8C5D3D3D6"); err != nil {
		t.Fatalf("Alter failed: %v", err)
	}
	expected := []string{
		"A:00001000  K:06",
		"R:00001000  C8C5D3D3 D6                          HELLO",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Alter mismatch (-want +got):\n%s", diff)
	}
	data, _ := sys.st.Peek(0x1000, 6)
	if !bytes.Equal(data, []byte{0xc8, 0xc5, 0xd3, 0xd3, 0xd6, 0x00}) {
		t.Errorf("Storage got: %x expected: c8c5d3d3d600", data)
	}
	for _, msg := range out.Messages {
		if msg.ID != msgRealDump || msg.Severity != Info {
			t.Errorf("Message got: %s%c expected: %sI", msg.ID, msg.Severity, msgRealDump)
		}
	}
}

// Real addresses go through prefixing, absolute addresses do not.
func TestAlterPrefix(t *testing.T) {
	sys, ctx := newSystem(0x10000)
	ctx.Prefix = 0x3000
	out := &Buffer{}
	if err := AlterDisplayRealOrAbs(sys, out, ctx, 'R', "10=FF"); err != nil {
		t.Fatalf("Alter real failed: %v", err)
	}
	expected := []string{
		"A:00003000  K:06",
		"R:00000010  FF                                   .",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Alter real mismatch (-want +got):\n%s", diff)
	}
	if err := AlterDisplayRealOrAbs(sys, out, ctx, 'A', "10=EE"); err != nil {
		t.Fatalf("Alter absolute failed: %v", err)
	}
	if data, _ := sys.st.Peek(0x3010, 1); data[0] != 0xff {
		t.Errorf("Real alter got: %02x expected: ff", data[0])
	}
	if data, _ := sys.st.Peek(0x10, 1); data[0] != 0xee {
		t.Errorf("Absolute alter got: %02x expected: ee", data[0])
	}
}

// Alteration past end of storage stores nothing beyond the limit.
func TestAlterLimit(t *testing.T) {
	sys, ctx := newSystem(0x1000)
	out := &Buffer{}
	err := AlterDisplayRealOrAbs(sys, out, ctx, 'R', "1000=AA")
	if !errors.Is(err, memory.ErrAddressing) {
		t.Fatalf("Alter past limit got: %v expected: addressing exception", err)
	}
	expected := []Message{{ID: msgAddr, Severity: Error, Text: "A:00001000  Addressing exception"}}
	if diff := cmp.Diff(expected, out.Messages); diff != "" {
		t.Errorf("Alter mismatch (-want +got):\n%s", diff)
	}

	out.Reset()
	err = AlterDisplayRealOrAbs(sys, out, ctx, 'A', "FFE=010203")
	if !errors.Is(err, memory.ErrAddressing) {
		t.Fatalf("Alter across limit got: %v expected: addressing exception", err)
	}
	data, _ := sys.st.Peek(0xffe, 2)
	if !bytes.Equal(data, []byte{0x01, 0x02}) {
		t.Errorf("Partial alter got: %x expected: 0102", data)
	}
}

// Guest absolute storage starts at the SIE origin and ends at the limit.
func TestAlterGuestAbs(t *testing.T) {
	sys, host := newSystem(0x20000)
	guest := cpu.NewContext(sys.profile, 1)
	guest.Host = host
	host.Guest = guest
	guest.SIEOrigin = 0x10000
	guest.SIELimit = 0xffff
	out := &Buffer{}
	if err := AlterDisplayRealOrAbs(sys, out, guest, 'A', "2000=C1"); err != nil {
		t.Fatalf("Alter guest absolute failed: %v", err)
	}
	expected := []string{
		"A:00012000  K:06",
		"A:00002000  C1                                   A",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Alter guest mismatch (-want +got):\n%s", diff)
	}
	data, _ := sys.st.Peek(0x2000, 1)
	if data[0] != 0 {
		t.Errorf("Host byte 2000 got: %02x expected: 00", data[0])
	}
	data, _ = sys.st.Peek(0x12000, 1)
	if data[0] != 0xc1 {
		t.Errorf("Guest byte 2000 got: %02x expected: c1", data[0])
	}

	out.Reset()
	if err := AlterDisplayRealOrAbs(sys, out, guest, 'R', "2000.1"); err != nil {
		t.Fatalf("Display guest real failed: %v", err)
	}
	expected = []string{
		"A:00012000  K:06",
		"R:00002000  C1                                   A",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Display guest real mismatch (-want +got):\n%s", diff)
	}

	out.Reset()
	err := AlterDisplayRealOrAbs(sys, out, guest, 'A', "18000=CD")
	if !errors.Is(err, cpu.ErrTranslation) {
		t.Fatalf("Alter past guest limit got: %v expected: addressing exception", err)
	}
	msgs := []Message{{ID: msgAddr, Severity: Error, Text: "A:00018000  Addressing exception"}}
	if diff := cmp.Diff(msgs, out.Messages); diff != "" {
		t.Errorf("Alter past guest limit mismatch (-want +got):\n%s", diff)
	}
	data, _ = sys.st.Peek(0x18000, 1)
	if data[0] != 0 {
		t.Errorf("Host byte 18000 got: %02x expected: 00", data[0])
	}
	if n := sys.pool.Outstanding(); n != 0 {
		t.Errorf("Outstanding snapshots got: %d expected: 0", n)
	}
}

func TestAlterNoStorage(t *testing.T) {
	sys, ctx := newSystem(0)
	out := &Buffer{}
	if err := AlterDisplayRealOrAbs(sys, out, ctx, 'R', "100"); !errors.Is(err, ErrNoStorage) {
		t.Errorf("No storage got: %v expected: %v", err, ErrNoStorage)
	}
	if err := AlterDisplayVirt(sys, out, ctx, "100"); !errors.Is(err, ErrNoStorage) {
		t.Errorf("No storage got: %v expected: %v", err, ErrNoStorage)
	}
	expected := []string{
		"R:00000100  Storage address is not valid",
		"V:00000100  Storage address is not valid",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("No storage mismatch (-want +got):\n%s", diff)
	}
}

func TestAlterBadOperand(t *testing.T) {
	sys, ctx := newSystem(0x1000)
	out := &Buffer{}
	if err := AlterDisplayRealOrAbs(sys, out, ctx, 'R', "10=AZ"); err == nil {
		t.Errorf("Bad operand did not fail")
	}
	if len(out.Messages) != 1 || out.Messages[0].ID != msgRange {
		t.Errorf("Bad operand messages got: %v", out.Messages)
	}
	if data, _ := sys.st.Peek(0x10, 1); data[0] != 0 {
		t.Errorf("Bad operand altered storage got: %02x", data[0])
	}
}

// One command shows at most 64K bytes.
func TestDisplayClamp(t *testing.T) {
	sys, ctx := newSystem(0x20000)
	out := &Buffer{}
	if err := AlterDisplayRealOrAbs(sys, out, ctx, 'R', "0-1FFFF"); err != nil {
		t.Fatalf("Display failed: %v", err)
	}
	if len(out.Messages) != 16+0x1000 {
		t.Errorf("Display lines got: %d expected: %d", len(out.Messages), 16+0x1000)
	}
	last := out.Messages[len(out.Messages)-1].Text
	if !strings.HasPrefix(last, "R:0000FFF0  ") {
		t.Errorf("Last line got: %s expected: R:0000FFF0", last)
	}
}

func TestDumpAbsPage(t *testing.T) {
	sys, _ := newSystem(0x10000)
	if err := sys.st.Write(0x2010, []byte{0xc1, 0xc2, 0xc3, 0xc4}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	sys.st.SetKey(0x2000, 0x10)
	lines, err := DumpAbsPage(sys.profile, sys.st, 0x2000, 0x5000, 0x10, 4, 0, 32)
	if err != nil {
		t.Fatalf("DumpAbsPage failed: %v", err)
	}
	expected := []string{"V:00005010  C1C2C3C4                             ABCD"}
	if diff := cmp.Diff(expected, lines); diff != "" {
		t.Errorf("DumpAbsPage mismatch (-want +got):\n%s", diff)
	}
	if k := sys.st.Key(0x2000); k != 0x10 {
		t.Errorf("Key changed got: %02x expected: 10", k)
	}

	lines, err = DumpAbsPage(sys.profile, sys.st, 0x10000, 0x10000, 0, 16, 'R', 32)
	if !errors.Is(err, memory.ErrAddressing) {
		t.Errorf("Outside storage got: %v expected: addressing exception", err)
	}
	if diff := cmp.Diff([]string{"R:00010000  Addressing exception"}, lines); diff != "" {
		t.Errorf("Outside storage mismatch (-want +got):\n%s", diff)
	}
}

// Invalid parameters are rejected before storage is looked at.
func TestDumpAbsPageParameters(t *testing.T) {
	sys, _ := newSystem(0x10000)
	before, _ := sys.st.Peek(0, 0x10000)
	tests := []struct {
		abs    uint64
		offset int
		amount int
		width  int
	}{
		{0x2000, 0x1000, 1, 32},
		{0x2000, 0xf00, 0x101, 32},
		{0x2000, -1, 1, 32},
		{0x2000, 0, -1, 32},
		{0x2010, 0, 16, 32},
		{0x2000, 0, 16, 16},
	}
	for _, test := range tests {
		lines, err := DumpAbsPage(sys.profile, sys.st, test.abs, 0, test.offset, test.amount, 'V', test.width)
		if !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("DumpAbsPage %+v got: %v expected: %v", test, err, ErrInvalidParameters)
		}
		if lines != nil {
			t.Errorf("DumpAbsPage %+v returned lines: %v", test, lines)
		}
	}
	after, _ := sys.st.Peek(0, 0x10000)
	if !bytes.Equal(before, after) {
		t.Errorf("Storage changed by invalid dump")
	}
	for i := range uint64(16) {
		if k := sys.st.Key(i << 12); k != 0 {
			t.Errorf("Key %x changed got: %02x", i<<12, k)
		}
	}
}

func TestAlterVirt(t *testing.T) {
	sys, ctx := newVirtSystem(t)
	out := &Buffer{}
	if err := AlterDisplayVirt(sys, out, ctx, "0=C1C2"); err != nil {
		t.Fatalf("Alter failed: %v", err)
	}
	expected := []string{
		"R:00005000  K:06  (primary)",
		"V:00000000  C1C2                                 AB",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Alter mismatch (-want +got):\n%s", diff)
	}
	if data, _ := sys.st.Peek(0x5000, 2); !bytes.Equal(data, []byte{0xc1, 0xc2}) {
		t.Errorf("Storage got: %x expected: c1c2", data)
	}
}

// Alteration ending in an invalid page changes nothing.
func TestAlterVirtInvalid(t *testing.T) {
	sys, ctx := newVirtSystem(t)
	out := &Buffer{}
	err := AlterDisplayVirt(sys, out, ctx, "FFF=0102")
	var terr *cpu.TranslationError
	if !errors.As(err, &terr) || terr.Code != cpu.CodePage {
		t.Fatalf("Alter got: %v expected: page translation exception", err)
	}
	expected := []Message{{ID: msgTrans, Severity: Error,
		Text: "V:00001000  Translation exception 0011 (Page-translation exception)  (primary)"}}
	if diff := cmp.Diff(expected, out.Messages); diff != "" {
		t.Errorf("Alter mismatch (-want +got):\n%s", diff)
	}
	if data, _ := sys.st.Peek(0x5fff, 1); data[0] != 0 {
		t.Errorf("Storage altered got: %02x expected: 00", data[0])
	}
	if ctx.TEA != 0 {
		t.Errorf("Live TEA changed got: %x", ctx.TEA)
	}
	if sys.pool.Outstanding() != 0 {
		t.Errorf("Snapshots not released got: %d", sys.pool.Outstanding())
	}
}

// Display stops at the first page that does not translate.
func TestDisplayVirtStops(t *testing.T) {
	sys, ctx := newVirtSystem(t)
	out := &Buffer{}
	if err := AlterDisplayVirt(sys, out, ctx, "P FF0-100F"); err == nil {
		t.Fatalf("Display did not fail")
	}
	expected := []string{
		"R:00005000  K:04  (primary)",
		"V:00000FF0  00000000 00000000 00000000 00000000  ................",
		"V:00001000  Translation exception 0011 (Page-translation exception)  (primary)",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Display mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplayReal(t *testing.T) {
	sys, ctx := newSystem(0x10000)
	if err := sys.st.Write(0x100, []byte{0xc1, 0xc2, 0xc3, 0xc4}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	line := DisplayReal(sys, ctx, 0x100, true)
	expected := "R:00000100:K:06=C1C2C3C4 00000000 00000000 00000000  ABCD............"
	if line != expected {
		t.Errorf("DisplayReal got: '%s' expected: '%s'", line, expected)
	}
	line = DisplayReal(sys, ctx, 0x20000, true)
	expected = "R:00020000: Real address is not valid"
	if line != expected {
		t.Errorf("DisplayReal got: '%s' expected: '%s'", line, expected)
	}
}

// Line stops at end of page.
func TestDisplayRealPageEnd(t *testing.T) {
	sys, ctx := newSystem(0x10000)
	line := DisplayReal(sys, ctx, 0xff8, false)
	expected := "K:00=                  00000000 00000000  ........"
	if line != expected {
		t.Errorf("DisplayReal got: '%s' expected: '%s'", line, expected)
	}
}

func TestDisplayVirt(t *testing.T) {
	sys, ctx := newVirtSystem(t)
	if err := sys.st.Write(0x5000, []byte{0xc8, 0xc9}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	sys.st.SetKey(0x5000, 0)
	line, err := DisplayVirt(sys, ctx, 0, 0, cpu.AccessRead)
	if err != nil {
		t.Fatalf("DisplayVirt failed: %v", err)
	}
	expected := "V:00000000:K:04=C8C90000 00000000 00000000 00000000  HI.............."
	if line != expected {
		t.Errorf("DisplayVirt got: '%s' expected: '%s'", line, expected)
	}
	line, err = DisplayVirt(sys, ctx, 0x1000, 0, cpu.AccessRead)
	if err == nil {
		t.Errorf("DisplayVirt of invalid page did not fail")
	}
	expected = "V:00001000: Translation exception 0011 (Page-translation exception)"
	if line != expected {
		t.Errorf("DisplayVirt got: '%s' expected: '%s'", line, expected)
	}
}

func TestDisasmReal(t *testing.T) {
	sys, ctx := newSystem(0x10000)
	code := []byte{0x1a, 0x12, 0x58, 0x81, 0x21, 0x00, 0xd2, 0x03, 0x01, 0x00, 0x00, 0x45}
	if err := sys.st.Write(0x100, code); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := &Buffer{}
	if err := DisasmStor(sys, out, ctx, "100-10B"); err != nil {
		t.Fatalf("Disassemble failed: %v", err)
	}
	expected := []string{
		"R:00000100  1A12         AR    1,2",
		"R:00000102  58812100     L     8,100(1,2)",
		"R:00000106  D20301000045 MVC   100(3),045",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Disassemble mismatch (-want +got):\n%s", diff)
	}
}

// Disassembly stops at the first address outside of storage.
func TestDisasmAddressing(t *testing.T) {
	sys, ctx := newSystem(0x1000)
	if err := sys.st.Write(0xffe, []byte{0x1a, 0x12}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := &Buffer{}
	err := DisasmStor(sys, out, ctx, "FFE-1003")
	if !errors.Is(err, memory.ErrAddressing) {
		t.Fatalf("Disassemble past limit got: %v expected: addressing exception", err)
	}
	expected := []string{
		"R:00000FFE  1A12         AR    1,2",
		"R:00001000  Addressing exception",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Disassemble mismatch (-want +got):\n%s", diff)
	}
}

func TestDisasmVirt(t *testing.T) {
	sys, ctx := newVirtSystem(t)
	if err := sys.st.Write(0x5ffe, []byte{0x1a, 0x12}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out := &Buffer{}
	err := DisasmStor(sys, out, ctx, "FFE-1001")
	if err == nil {
		t.Fatalf("Disassemble did not fail")
	}
	expected := []string{
		"P:00000FFE  1A12         AR    1,2",
		"R:00001000  Storage not accessible code = 0011 (Page-translation exception)",
	}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Disassemble mismatch (-want +got):\n%s", diff)
	}

	out.Reset()
	if err := DisasmStor(sys, out, ctx, "R 5FFE-5FFF"); err != nil {
		t.Fatalf("Disassemble real failed: %v", err)
	}
	expected = []string{"R:00005FFE  1A12         AR    1,2"}
	if diff := cmp.Diff(expected, out.Lines()); diff != "" {
		t.Errorf("Disassemble mismatch (-want +got):\n%s", diff)
	}
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	con := NewConsole(&buf)
	con.Write(Message{ID: msgRealDump, Severity: Info, Text: "A:00000000  K:00"})
	con.SetTag("CP01")
	con.Write(Message{ID: msgAddr, Severity: Error, Text: "A:00001000  Addressing exception"})
	expected := "HHC02290I A:00000000  K:00\nCP01: HHC02328E A:00001000  Addressing exception\n"
	if buf.String() != expected {
		t.Errorf("Console got: '%s' expected: '%s'", buf.String(), expected)
	}
	if con.Errors() != 1 {
		t.Errorf("Console errors got: %d expected: 1", con.Errors())
	}
}
