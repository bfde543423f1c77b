/*
 * S370 - CPU translation definitions.
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

package cpu

// Code is a program interruption code.
type Code uint16

const (
	// Program interruption codes raised by translation.
	CodeNone          Code = 0x0000 // Translation successful
	CodeProtection    Code = 0x0004 // Protection exception
	CodeAddressing    Code = 0x0005 // Addressing exception
	CodeSpecification Code = 0x0006 // Specification exception
	CodeSegment       Code = 0x0010 // Segment translation
	CodePage          Code = 0x0011 // Page translation
	CodeTransSpec     Code = 0x0012 // Translation specification
	CodeALETSpec      Code = 0x0028 // ALET specification
	CodeALENTrans     Code = 0x0029 // ALEN translation
	CodeALESequence   Code = 0x002a // ALE sequence
	CodeASTEValidity  Code = 0x002b // ASTE validity
	CodeASTESequence  Code = 0x002c // ASTE sequence
	CodeASCEType      Code = 0x0038 // ASCE type
	CodeRegionFirst   Code = 0x0039 // Region first translation
	CodeRegionSecond  Code = 0x003a // Region second translation
	CodeRegionThird   Code = 0x003b // Region third translation
	codeInterruptMask Code = 0x00ff // Strip PER and monitor flags
)

// Access is the kind of storage reference being translated.
type Access int

const (
	AccessInstFetch Access = iota // Instruction fetch
	AccessRead                    // Operand fetch
	AccessWrite                   // Operand store
	AccessLRA                     // Load real address
	AccessHW                      // Hardware or diagnostic access
)

// ASC is the address space control field of the PSW.
type ASC uint8

const (
	ASCPrimary   ASC = 0 // Primary space mode
	ASCAccessReg ASC = 1 // Access register mode
	ASCSecondary ASC = 2 // Secondary space mode
	ASCHome      ASC = 3 // Home space mode
)

// Special access register numbers.
const (
	UseRealAddr       = -1 // Address is real, no translation
	UsePrimarySpace   = -2 // Primary space regardless of PSW
	UseSecondarySpace = -3 // Secondary space regardless of PSW
	UseHomeSpace      = -4 // Home space regardless of PSW
	useInstSpace      = -5 // Instruction space from PSW
	UseAbsAddr        = -6 // Address is absolute, no prefixing
)

// Source tells how an address was translated.
type Source int

const (
	SourcePrimary   Source = 0  // Primary segment table
	SourceAR        Source = 1  // Access register specified
	SourceSecondary Source = 2  // Secondary segment table
	SourceHome      Source = 3  // Home segment table
	SourceReal      Source = -1 // DAT off or real address
)

const (
	// S/370 control register 0 translation format.
	cr0PageSize  uint64 = 0x00c00000 // Page size field
	cr0SegSize   uint64 = 0x00380000 // Segment size field
	cr0Page2K    uint64 = 0x00400000
	cr0Page4K    uint64 = 0x00800000
	cr0Seg64K    uint64 = 0x00000000
	cr0Seg1M     uint64 = 0x00100000
	std370Length uint64 = 0xff000000 // Segment table length
	std370Origin uint64 = 0x00ffffc0 // Segment table origin
	ste370Length uint32 = 0xf0000000 // Page table length
	ste370Origin uint32 = 0x00fffff8 // Page table origin
	ste370Inval  uint32 = 0x00000001 // Segment invalid

	// ESA/390 segment table designation and entries.
	std390Origin uint64 = 0x7ffff000 // Segment table origin
	std390Length uint64 = 0x0000007f // Segment table length
	ste390Origin uint32 = 0x7fffffc0 // Page table origin
	ste390Inval  uint32 = 0x00000020 // Segment invalid
	ste390Common uint32 = 0x00000010 // Common segment
	ste390Length uint32 = 0x0000000f // Page table length
	pte390Frame  uint32 = 0x7ffff000 // Page frame real address
	pte390Inval  uint32 = 0x00000400 // Page invalid
	pte390Prot   uint32 = 0x00000200 // Page protected
	pte390Resv   uint32 = 0x80000900 // Reserved bits must be zero

	// z/Architecture address space control element and entries.
	asceOrigin  uint64 = 0xfffffffffffff000 // Table origin
	asceReal    uint64 = 0x0000000000000020 // Real space control
	asceDT      uint64 = 0x000000000000000c // Designation type
	asceTL      uint64 = 0x0000000000000003 // Table length
	asceDTSeg   uint64 = 0x0000000000000000 // Segment table
	asceDTRT    uint64 = 0x0000000000000004 // Region third table
	asceDTRS    uint64 = 0x0000000000000008 // Region second table
	asceDTRF    uint64 = 0x000000000000000c // Region first table
	rteOrigin   uint64 = 0xfffffffffffff000 // Next table origin
	rteProt     uint64 = 0x0000000000000200 // DAT protection
	rteTF       uint64 = 0x00000000000000c0 // Table offset
	rteInval    uint64 = 0x0000000000000020 // Region invalid
	rteTT       uint64 = 0x000000000000000c // Table type
	rteTL       uint64 = 0x0000000000000003 // Table length
	steZOrigin  uint64 = 0xfffffffffffff800 // Page table origin
	steZProt    uint64 = 0x0000000000000200 // Page protection
	steZInval   uint64 = 0x0000000000000020 // Segment invalid
	steZCommon  uint64 = 0x0000000000000010 // Common segment
	steZTT      uint64 = 0x000000000000000c // Table type
	pteZFrame   uint64 = 0xfffffffffffff000 // Page frame real address
	pteZInval   uint64 = 0x0000000000000400 // Page invalid
	pteZProt    uint64 = 0x0000000000000200 // Page protected
	pteZResv    uint64 = 0x0000000000000900 // Reserved bits must be zero
	ttSegment   uint64 = 0x0000000000000000 // Table type segment
	ttRegThird  uint64 = 0x0000000000000004
	ttRegSecond uint64 = 0x0000000000000008
	ttRegFirst  uint64 = 0x000000000000000c

	// Access register translation.
	aletReserved uint32 = 0xfe000000 // Must be zero
	aletPrimary  uint32 = 0x01000000 // Primary list
	aletALESN    uint32 = 0x00ff0000 // Access list entry sequence
	aletALEN     uint32 = 0x0000ffff // Access list entry number
	cr2DUCTO     uint64 = 0x7fffffc0 // Dispatchable unit control table
	cr5PASTEO    uint64 = 0x7fffffc0 // Primary ASTE origin
	aldOrigin    uint32 = 0x7fffff80 // Access list origin
	aldLength    uint32 = 0x0000007f // Access list length
	aleInval     uint32 = 0x80000000 // Access list entry invalid
	aleFetchOnly uint32 = 0x02000000 // Fetch only
	aleALESN     uint32 = 0x00ff0000 // Access list entry sequence
	aleASTEO     uint32 = 0x7fffffc0 // ASTE origin
	asteInval    uint32 = 0x80000000 // ASTE invalid
)

// Byte offsets within translation control blocks.
const (
	ductALD    = 16 // DU-AL designation in DUCT
	asteALD    = 16 // PS-AL designation in ASTE
	asteSTD    = 8  // STD or ASCE in ASTE
	asteASTESN = 20 // ASTE sequence number
	aleASTE    = 8  // ASTE origin in ALE
	aleASTESN  = 12 // ASTE sequence in ALE
)
