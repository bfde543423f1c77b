/*
 * S370 - Instruction disassembler
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

package disassemble

import (
	"fmt"
	"strings"
)

const (
	tyRR  = 1 + iota
	tyRX  // R1,D2(X2,B2)
	tyRS  // R1,R3,D2(B2)
	tySI  // D1(B1),I2
	tySS  // D1(L,B1),D2(B2)
	tyS   // D2(B2)
	tyRI  // R1,I2
	tyRIL // R1,I2 32 bit relative
	tyRRE // R1,R2 with 16 bit opcode
	tyRXY // R1,D2(X2,B2) with 20 bit displacement
	tyRSY // R1,R3,D2(B2) with 20 bit displacement
)

const (
	zeroOp = 1 + iota // No operands
	oneOp             // First operand only
	imdOp             // Immediate byte
	twoOp             // Two lengths
	relOp             // Relative branch target
)

type opcode struct {
	opName  string // Opcode string.
	opType  int    // Opcode type.
	opFlags int    // Opcode flags
}

var opMap = map[uint8]opcode{
	0x04: {"SPM", tyRR, oneOp},
	0x05: {"BALR", tyRR, 0},
	0x06: {"BCTR", tyRR, 0},
	0x07: {"BCR", tyRR, 0},
	0x08: {"SSK", tyRR, 0},
	0x09: {"ISK", tyRR, 0},
	0x0A: {"SVC", tyRR, imdOp},
	0x0B: {"BSM", tyRR, 0},
	0x0C: {"BASSM", tyRR, 0},
	0x0D: {"BASR", tyRR, 0},
	0x0E: {"MVCL", tyRR, 0},
	0x0F: {"CLCL", tyRR, 0},
	0x10: {"LPR", tyRR, 0},
	0x11: {"LNR", tyRR, 0},
	0x12: {"LTR", tyRR, 0},
	0x13: {"LCR", tyRR, 0},
	0x14: {"NR", tyRR, 0},
	0x15: {"CLR", tyRR, 0},
	0x16: {"OR", tyRR, 0},
	0x17: {"XR", tyRR, 0},
	0x18: {"LR", tyRR, 0},
	0x19: {"CR", tyRR, 0},
	0x1A: {"AR", tyRR, 0},
	0x1B: {"SR", tyRR, 0},
	0x1C: {"MR", tyRR, 0},
	0x1D: {"DR", tyRR, 0},
	0x1E: {"ALR", tyRR, 0},
	0x1F: {"SLR", tyRR, 0},
	0x20: {"LPDR", tyRR, 0},
	0x21: {"LNDR", tyRR, 0},
	0x22: {"LTDR", tyRR, 0},
	0x23: {"LCDR", tyRR, 0},
	0x24: {"HDR", tyRR, 0},
	0x25: {"LRDR", tyRR, 0},
	0x26: {"MXR", tyRR, 0},
	0x27: {"MXDR", tyRR, 0},
	0x28: {"LDR", tyRR, 0},
	0x29: {"CDR", tyRR, 0},
	0x2A: {"ADR", tyRR, 0},
	0x2B: {"SDR", tyRR, 0},
	0x2C: {"MDR", tyRR, 0},
	0x2D: {"DDR", tyRR, 0},
	0x2E: {"AWR", tyRR, 0},
	0x2F: {"SWR", tyRR, 0},
	0x30: {"LPER", tyRR, 0},
	0x31: {"LNER", tyRR, 0},
	0x32: {"LTER", tyRR, 0},
	0x33: {"LCER", tyRR, 0},
	0x34: {"HER", tyRR, 0},
	0x35: {"LRER", tyRR, 0},
	0x36: {"AXR", tyRR, 0},
	0x37: {"SXR", tyRR, 0},
	0x38: {"LER", tyRR, 0},
	0x39: {"CER", tyRR, 0},
	0x3A: {"AER", tyRR, 0},
	0x3B: {"SER", tyRR, 0},
	0x3C: {"MER", tyRR, 0},
	0x3D: {"DER", tyRR, 0},
	0x3E: {"AUR", tyRR, 0},
	0x3F: {"SUR", tyRR, 0},
	0x40: {"STH", tyRX, 0},
	0x41: {"LA", tyRX, 0},
	0x42: {"STC", tyRX, 0},
	0x43: {"IC", tyRX, 0},
	0x44: {"EX", tyRX, 0},
	0x45: {"BAL", tyRX, 0},
	0x46: {"BCT", tyRX, 0},
	0x47: {"BC", tyRX, 0},
	0x48: {"LH", tyRX, 0},
	0x49: {"CH", tyRX, 0},
	0x4A: {"AH", tyRX, 0},
	0x4B: {"SH", tyRX, 0},
	0x4C: {"MH", tyRX, 0},
	0x4D: {"BAS", tyRX, 0},
	0x4E: {"CVD", tyRX, 0},
	0x4F: {"CVB", tyRX, 0},
	0x50: {"ST", tyRX, 0},
	0x51: {"LAE", tyRX, 0},
	0x54: {"N", tyRX, 0},
	0x55: {"CL", tyRX, 0},
	0x56: {"O", tyRX, 0},
	0x57: {"X", tyRX, 0},
	0x58: {"L", tyRX, 0},
	0x59: {"C", tyRX, 0},
	0x5A: {"A", tyRX, 0},
	0x5B: {"S", tyRX, 0},
	0x5C: {"M", tyRX, 0},
	0x5D: {"D", tyRX, 0},
	0x5E: {"AL", tyRX, 0},
	0x5F: {"SL", tyRX, 0},
	0x60: {"STD", tyRX, 0},
	0x67: {"MXD", tyRX, 0},
	0x68: {"LD", tyRX, 0},
	0x69: {"CD", tyRX, 0},
	0x6A: {"AD", tyRX, 0},
	0x6B: {"SD", tyRX, 0},
	0x6C: {"MD", tyRX, 0},
	0x6D: {"DD", tyRX, 0},
	0x6E: {"AW", tyRX, 0},
	0x6F: {"SW", tyRX, 0},
	0x70: {"STE", tyRX, 0},
	0x71: {"MS", tyRX, 0},
	0x78: {"LE", tyRX, 0},
	0x79: {"CE", tyRX, 0},
	0x7A: {"AE", tyRX, 0},
	0x7B: {"SE", tyRX, 0},
	0x7C: {"ME", tyRX, 0},
	0x7D: {"DE", tyRX, 0},
	0x7E: {"AU", tyRX, 0},
	0x7F: {"SU", tyRX, 0},
	0x80: {"SSM", tyS, 0},
	0x82: {"LPSW", tyS, 0},
	0x83: {"DIAG", tyRS, 0},
	0x86: {"BXH", tyRS, 0},
	0x87: {"BXLE", tyRS, 0},
	0x88: {"SRL", tyRS, oneOp},
	0x89: {"SLL", tyRS, oneOp},
	0x8A: {"SRA", tyRS, oneOp},
	0x8B: {"SLA", tyRS, oneOp},
	0x8C: {"SRDL", tyRS, oneOp},
	0x8D: {"SLDL", tyRS, oneOp},
	0x8E: {"SRDA", tyRS, oneOp},
	0x8F: {"SLDA", tyRS, oneOp},
	0x90: {"STM", tyRS, 0},
	0x91: {"TM", tySI, 0},
	0x92: {"MVI", tySI, 0},
	0x93: {"TS", tyS, 0},
	0x94: {"NI", tySI, 0},
	0x95: {"CLI", tySI, 0},
	0x96: {"OI", tySI, 0},
	0x97: {"XI", tySI, 0},
	0x98: {"LM", tyRS, 0},
	0x99: {"TRACE", tyRS, 0},
	0x9A: {"LAM", tyRS, 0},
	0x9B: {"STAM", tyRS, 0},
	0x9C: {"SIO", tyS, 0},
	0x9D: {"TIO", tyS, 0},
	0x9E: {"HIO", tyS, 0},
	0x9F: {"TCH", tyS, 0},
	0xA8: {"MVCLE", tyRS, 0},
	0xA9: {"CLCLE", tyRS, 0},
	0xAC: {"STNSM", tySI, 0},
	0xAD: {"STOSM", tySI, 0},
	0xAE: {"SIGP", tyRS, 0},
	0xAF: {"MC", tySI, 0},
	0xB1: {"LRA", tyRX, 0},
	0xB6: {"STCTL", tyRS, 0},
	0xB7: {"LCTL", tyRS, 0},
	0xBA: {"CS", tyRS, 0},
	0xBB: {"CDS", tyRS, 0},
	0xBD: {"CLM", tyRS, 0},
	0xBE: {"STCM", tyRS, 0},
	0xBF: {"ICM", tyRS, 0},
	0xD1: {"MVN", tySS, 0},
	0xD2: {"MVC", tySS, 0},
	0xD3: {"MVZ", tySS, 0},
	0xD4: {"NC", tySS, 0},
	0xD5: {"CLC", tySS, 0},
	0xD6: {"OC", tySS, 0},
	0xD7: {"XC", tySS, 0},
	0xDC: {"TR", tySS, 0},
	0xDD: {"TRT", tySS, 0},
	0xDE: {"ED", tySS, 0},
	0xDF: {"EDMK", tySS, 0},
	0xE8: {"MVCIN", tySS, 0},
	0xF0: {"SRP", tySS, twoOp},
	0xF1: {"MVO", tySS, twoOp},
	0xF2: {"PACK", tySS, twoOp},
	0xF3: {"UNPK", tySS, twoOp},
	0xF8: {"ZAP", tySS, twoOp},
	0xF9: {"CP", tySS, twoOp},
	0xFA: {"AP", tySS, twoOp},
	0xFB: {"SP", tySS, twoOp},
	0xFC: {"MP", tySS, twoOp},
	0xFD: {"DP", tySS, twoOp},
}

// Opcodes that need a second byte to decode.
var extMap = map[uint16]opcode{
	0xB200: {"CONCS", tyS, 0},
	0xB201: {"DISCS", tyS, 0},
	0xB202: {"STIDP", tyS, 0},
	0xB203: {"STIDC", tyS, 0},
	0xB204: {"SCK", tyS, 0},
	0xB205: {"STCK", tyS, 0},
	0xB206: {"SCKC", tyS, 0},
	0xB207: {"STCKC", tyS, 0},
	0xB208: {"SPT", tyS, 0},
	0xB209: {"STPT", tyS, 0},
	0xB20A: {"SPKA", tyS, 0},
	0xB20B: {"IPK", tyS, zeroOp},
	0xB20D: {"PTLB", tyS, zeroOp},
	0xB210: {"SPX", tyS, 0},
	0xB211: {"STPX", tyS, 0},
	0xB212: {"STAP", tyS, 0},
	0xB213: {"RRB", tyS, 0},
	0xB218: {"PC", tyS, 0},
	0xB219: {"SAC", tyS, 0},
	0xB21A: {"CFC", tyS, 0},
	0xB221: {"IPTE", tyRRE, 0},
	0xB222: {"IPM", tyRRE, oneOp},
	0xB223: {"IVSK", tyRRE, 0},
	0xB224: {"IAC", tyRRE, oneOp},
	0xB225: {"SSAR", tyRRE, oneOp},
	0xB226: {"EPAR", tyRRE, oneOp},
	0xB227: {"ESAR", tyRRE, oneOp},
	0xB228: {"PT", tyRRE, 0},
	0xB229: {"ISKE", tyRRE, 0},
	0xB22A: {"RRBE", tyRRE, 0},
	0xB22B: {"SSKE", tyRRE, 0},
	0xB22C: {"TB", tyRRE, 0},
	0xB22D: {"DXR", tyRRE, 0},
	0xB240: {"BAKR", tyRRE, 0},
	0xB241: {"CKSM", tyRRE, 0},
	0xB246: {"STURA", tyRRE, 0},
	0xB247: {"MSTA", tyRRE, oneOp},
	0xB248: {"PALB", tyRRE, zeroOp},
	0xB249: {"EREG", tyRRE, 0},
	0xB24A: {"ESTA", tyRRE, 0},
	0xB24B: {"LURA", tyRRE, 0},
	0xB24C: {"TAR", tyRRE, 0},
	0xB24D: {"CPYA", tyRRE, 0},
	0xB24E: {"SAR", tyRRE, 0},
	0xB24F: {"EAR", tyRRE, 0},
	0xB252: {"MSR", tyRRE, 0},
	0xB255: {"MVST", tyRRE, 0},
	0xB257: {"CUSE", tyRRE, 0},
	0xB25A: {"BSA", tyRRE, 0},
	0xB25D: {"CLST", tyRRE, 0},
	0xB25E: {"SRST", tyRRE, 0},
	0xB2B1: {"STFL", tyS, 0},
	0xB2B2: {"LPSWE", tyS, 0},
	0xB900: {"LPGR", tyRRE, 0},
	0xB901: {"LNGR", tyRRE, 0},
	0xB902: {"LTGR", tyRRE, 0},
	0xB903: {"LCGR", tyRRE, 0},
	0xB904: {"LGR", tyRRE, 0},
	0xB908: {"AGR", tyRRE, 0},
	0xB909: {"SGR", tyRRE, 0},
	0xB90A: {"ALGR", tyRRE, 0},
	0xB90B: {"SLGR", tyRRE, 0},
	0xB90C: {"MSGR", tyRRE, 0},
	0xB90D: {"DSGR", tyRRE, 0},
	0xB914: {"LGFR", tyRRE, 0},
	0xB918: {"AGFR", tyRRE, 0},
	0xB920: {"CGR", tyRRE, 0},
	0xB921: {"CLGR", tyRRE, 0},
	0xB925: {"STURG", tyRRE, 0},
	0xB930: {"CGFR", tyRRE, 0},
	0xB946: {"BCTGR", tyRRE, 0},
	0xB980: {"NGR", tyRRE, 0},
	0xB981: {"OGR", tyRRE, 0},
	0xB982: {"XGR", tyRRE, 0},
	0xA700: {"TMLH", tyRI, 0},
	0xA701: {"TMLL", tyRI, 0},
	0xA702: {"TMHH", tyRI, 0},
	0xA703: {"TMHL", tyRI, 0},
	0xA704: {"BRC", tyRI, relOp},
	0xA705: {"BRAS", tyRI, relOp},
	0xA706: {"BRCT", tyRI, relOp},
	0xA707: {"BRCTG", tyRI, relOp},
	0xA708: {"LHI", tyRI, 0},
	0xA709: {"LGHI", tyRI, 0},
	0xA70A: {"AHI", tyRI, 0},
	0xA70B: {"AGHI", tyRI, 0},
	0xA70C: {"MHI", tyRI, 0},
	0xA70D: {"MGHI", tyRI, 0},
	0xA70E: {"CHI", tyRI, 0},
	0xA70F: {"CGHI", tyRI, 0},
	0xC000: {"LARL", tyRIL, relOp},
	0xC004: {"BRCL", tyRIL, relOp},
	0xC005: {"BRASL", tyRIL, relOp},
	0xE302: {"LTG", tyRXY, 0},
	0xE304: {"LG", tyRXY, 0},
	0xE308: {"AG", tyRXY, 0},
	0xE309: {"SG", tyRXY, 0},
	0xE30C: {"MSG", tyRXY, 0},
	0xE314: {"LGF", tyRXY, 0},
	0xE316: {"LLGF", tyRXY, 0},
	0xE320: {"CG", tyRXY, 0},
	0xE321: {"CLG", tyRXY, 0},
	0xE324: {"STG", tyRXY, 0},
	0xE346: {"BCTG", tyRXY, 0},
	0xE350: {"STY", tyRXY, 0},
	0xE358: {"LY", tyRXY, 0},
	0xE371: {"LAY", tyRXY, 0},
	0xE380: {"NG", tyRXY, 0},
	0xE381: {"OG", tyRXY, 0},
	0xE382: {"XG", tyRXY, 0},
	0xEB04: {"LMG", tyRSY, 0},
	0xEB0A: {"SRAG", tyRSY, 0},
	0xEB0B: {"SLAG", tyRSY, 0},
	0xEB0C: {"SRLG", tyRSY, 0},
	0xEB0D: {"SLLG", tyRSY, 0},
	0xEB24: {"STMG", tyRSY, 0},
	0xEB25: {"STCTG", tyRSY, 0},
	0xEB2F: {"LCTLG", tyRSY, 0},
	0xEB30: {"CSG", tyRSY, 0},
	0xEB44: {"BXHG", tyRSY, 0},
	0xEB45: {"BXLEG", tyRSY, 0},
}

// ILC returns length of instruction in bytes from its first opcode byte.
func ILC(opcode uint8) int {
	switch {
	case opcode < 0x40:
		return 2
	case opcode < 0xc0:
		return 4
	}
	return 6
}

// Find opcode definition, looking at extended opcode field if needed.
func lookup(data []byte) (opcode, bool) {
	var ext uint16
	switch data[0] {
	case 0xB2, 0xB9:
		ext = uint16(data[1])
	case 0xA7, 0xC0:
		ext = uint16(data[1] & 0xf)
	case 0xE3, 0xEB:
		ext = uint16(data[5])
	default:
		op, ok := opMap[data[0]]
		return op, ok
	}
	op, ok := extMap[uint16(data[0])<<8|ext]
	return op, ok
}

// Disassemble returns text of instruction at start of data and its length.
func Disassemble(data []byte) (string, int) {
	if len(data) == 0 {
		return "", 0
	}
	length := ILC(data[0])
	var buf [6]byte
	copy(buf[:], data)
	data = buf[:]

	op, ok := lookup(data)
	if !ok {
		return undefined(data[:length]), length
	}

	// Make opcode align
	inst := fmt.Sprintf("%-5s ", op.opName)
	r1 := (data[1] >> 4) & 0xf
	r2 := data[1] & 0xf
	switch op.opType {
	case tyRR:
		switch op.opFlags {
		case imdOp:
			inst += fmt.Sprintf("%02X", data[1])
		case oneOp:
			inst += fmt.Sprintf("%X", r1)
		default:
			inst += fmt.Sprintf("%d,%d", r1, r2)
		}
	case tyRX:
		inst += fmt.Sprintf("%d,", r1)
		inst += address(r2, data[2], data[3])
	case tyRS:
		inst += fmt.Sprintf("%d", r1)
		if op.opFlags != oneOp {
			inst += fmt.Sprintf(",%d", r2)
		}
		inst += "," + address(0, data[2], data[3])
	case tySI:
		inst += address(0, data[2], data[3])
		inst += fmt.Sprintf(",%02X", data[1])
	case tyS:
		if op.opFlags != zeroOp {
			inst += address(0, data[2], data[3])
		}
	case tySS:
		inst += storage(data)
	case tyRI:
		imm := int16(uint16(data[2])<<8 | uint16(data[3]))
		if op.opFlags == relOp {
			inst += fmt.Sprintf("%d,%s", r1, relative(int64(imm)))
		} else {
			inst += fmt.Sprintf("%d,%d", r1, imm)
		}
	case tyRIL:
		imm := int32(uint32(data[2])<<24 | uint32(data[3])<<16 | uint32(data[4])<<8 | uint32(data[5]))
		inst += fmt.Sprintf("%d,%s", r1, relative(int64(imm)))
	case tyRRE:
		r1 = (data[3] >> 4) & 0xf
		r2 = data[3] & 0xf
		switch op.opFlags {
		case zeroOp:
		case oneOp:
			inst += fmt.Sprintf("%d", r1)
		default:
			inst += fmt.Sprintf("%d,%d", r1, r2)
		}
	case tyRXY:
		inst += fmt.Sprintf("%d,", r1)
		inst += longAddress(r2, data)
	case tyRSY:
		inst += fmt.Sprintf("%d,%d,", r1, r2)
		inst += longAddress(0, data)
	}
	return inst, length
}

// Format both operands of storage to storage instruction.
func storage(data []byte) string {
	d1 := (uint16(data[2]&0x0f) << 8) | uint16(data[3])
	b1 := (data[2] >> 4) & 0xf
	d2 := (uint16(data[4]&0x0f) << 8) | uint16(data[5])
	b2 := (data[4] >> 4) & 0xf
	op := opMap[data[0]]

	inst := fmt.Sprintf("%03X(", d1)
	if op.opFlags == twoOp {
		inst += fmt.Sprintf("%d", (data[1]>>4)&0xf)
	} else {
		inst += fmt.Sprintf("%d", data[1])
	}
	if b1 != 0 {
		inst += fmt.Sprintf(",%d", b1)
	}
	inst += fmt.Sprintf("),%03X", d2)

	if op.opFlags == twoOp {
		inst += fmt.Sprintf("(%d", data[1]&0xf)
		if b2 != 0 {
			inst += fmt.Sprintf(",%d", b2)
		}
		inst += ")"
	} else if b2 != 0 {
		inst += fmt.Sprintf("(%d)", b2)
	}
	return inst
}

// Format D(X,B) operand with 12 bit displacement.
func address(x2, data1, data2 byte) string {
	offset := (uint16(data1&0x0f) << 8) | uint16(data2)
	return base(fmt.Sprintf("%03X", offset), x2, (data1>>4)&0xf)
}

// Format D(X,B) operand with signed 20 bit displacement.
func longAddress(x2 byte, data []byte) string {
	disp := int64(int8(data[4]))<<12 | int64(data[2]&0x0f)<<8 | int64(data[3])
	text := fmt.Sprintf("%03X", disp)
	if disp < 0 {
		text = fmt.Sprintf("-%03X", -disp)
	}
	return base(text, x2, (data[2]>>4)&0xf)
}

func base(addr string, x2, b2 byte) string {
	if x2 == 0 && b2 == 0 {
		return addr
	}
	addr += "("
	if x2 != 0 {
		addr += fmt.Sprintf("%d", x2)
		if b2 != 0 {
			addr += ","
		}
	}
	if b2 != 0 {
		addr += fmt.Sprintf("%d", b2)
	}
	return addr + ")"
}

// Relative offset is in halfwords.
func relative(imm int64) string {
	if imm < 0 {
		return fmt.Sprintf("*-%X", -imm*2)
	}
	return fmt.Sprintf("*+%X", imm*2)
}

// Unknown opcodes are shown as constants.
func undefined(data []byte) string {
	var str strings.Builder
	str.WriteString("DC    X'")
	for _, by := range data {
		fmt.Fprintf(&str, "%02X", by)
	}
	str.WriteByte('\'')
	return str.String()
}
