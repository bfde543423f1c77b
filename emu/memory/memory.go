/*
 * S370 - Main storage and storage keys.
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

package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	KeyAccess  uint8 = 0xf0 // Access control bits
	KeyFetch   uint8 = 0x08 // Fetch protection
	KeyRef     uint8 = 0x04 // Reference bit
	KeyChange  uint8 = 0x02 // Change bit
	KeyBadFrm  uint8 = 0x01 // Frame marked unusable
	KeyRefChg  uint8 = KeyRef | KeyChange
	maxStorage       = uint64(1) << 40
)

var ErrAddressing = errors.New("addressing exception")

// AddressingError reports an access outside of installed storage.
type AddressingError struct {
	Addr  uint64 // Absolute address that failed.
	Limit uint64 // Highest valid absolute address.
}

func (e *AddressingError) Error() string {
	return fmt.Sprintf("addressing exception at %X, limit %X", e.Addr, e.Limit)
}

func (e *AddressingError) Unwrap() error {
	return ErrAddressing
}

// Storage is main storage shared by all CPUs.
type Storage struct {
	mem      []byte
	key      []uint8
	keyShift uint
}

// New creates storage of size bytes with keys covering 1<<keyShift bytes.
func New(size uint64, keyShift uint) *Storage {
	if size > maxStorage {
		size = maxStorage
	}
	frames := (size + (1 << keyShift) - 1) >> keyShift
	return &Storage{
		mem:      make([]byte, size),
		key:      make([]uint8, frames),
		keyShift: keyShift,
	}
}

// Return size of storage in bytes.
func (s *Storage) Size() uint64 {
	return uint64(len(s.mem))
}

// Limit returns highest valid absolute address. Only valid when Size() != 0.
func (s *Storage) Limit() uint64 {
	if len(s.mem) == 0 {
		return 0
	}
	return uint64(len(s.mem)) - 1
}

// KeyShift returns log2 of the key frame size.
func (s *Storage) KeyShift() uint {
	return s.keyShift
}

// Check if whole range is inside storage.
func (s *Storage) Check(addr uint64, length int) error {
	if length <= 0 {
		length = 1
	}
	end := addr + uint64(length) - 1
	if len(s.mem) == 0 || end < addr || addr > s.Limit() {
		return &AddressingError{Addr: addr, Limit: s.Limit()}
	}
	if end > s.Limit() {
		return &AddressingError{Addr: s.Limit() + 1, Limit: s.Limit()}
	}
	return nil
}

// Mark frames touched by range.
func (s *Storage) touch(addr uint64, length int, bits uint8) {
	first := addr >> s.keyShift
	last := (addr + uint64(length) - 1) >> s.keyShift
	for f := first; f <= last; f++ {
		s.key[f] |= bits
	}
}

// Peek copies length bytes without updating storage keys.
func (s *Storage) Peek(addr uint64, length int) ([]byte, error) {
	if err := s.Check(addr, length); err != nil {
		return nil, err
	}
	data := make([]byte, length)
	copy(data, s.mem[addr:addr+uint64(length)])
	return data, nil
}

// Write stores data at absolute address.
func (s *Storage) Write(addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := s.Check(addr, len(data)); err != nil {
		return err
	}
	s.touch(addr, len(data), KeyRefChg)
	copy(s.mem[addr:], data)
	return nil
}

// Write one byte.
func (s *Storage) PutByte(addr uint64, data uint8) error {
	if err := s.Check(addr, 1); err != nil {
		return err
	}
	s.key[addr>>s.keyShift] |= KeyRefChg
	s.mem[addr] = data
	return nil
}

// Get a halfword from storage.
func (s *Storage) GetHalf(addr uint64) (uint16, error) {
	if err := s.Check(addr, 2); err != nil {
		return 0, err
	}
	s.touch(addr, 2, KeyRef)
	return binary.BigEndian.Uint16(s.mem[addr:]), nil
}

// Get a word from storage.
func (s *Storage) GetWord(addr uint64) (uint32, error) {
	if err := s.Check(addr, 4); err != nil {
		return 0, err
	}
	s.touch(addr, 4, KeyRef)
	return binary.BigEndian.Uint32(s.mem[addr:]), nil
}

// Get a doubleword from storage.
func (s *Storage) GetDouble(addr uint64) (uint64, error) {
	if err := s.Check(addr, 8); err != nil {
		return 0, err
	}
	s.touch(addr, 8, KeyRef)
	return binary.BigEndian.Uint64(s.mem[addr:]), nil
}

// Put a word to storage.
func (s *Storage) PutWord(addr uint64, data uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], data)
	return s.Write(addr, buf[:])
}

// Key returns storage key of frame, including bad frame bit.
// Does not update reference bits.
func (s *Storage) Key(addr uint64) uint8 {
	if len(s.mem) == 0 || addr > s.Limit() {
		return 0
	}
	return s.key[addr>>s.keyShift]
}

// SetKey replaces storage key of frame, bad frame bit is preserved.
func (s *Storage) SetKey(addr uint64, key uint8) {
	if len(s.mem) == 0 || addr > s.Limit() {
		return
	}
	f := addr >> s.keyShift
	s.key[f] = (key &^ KeyBadFrm) | (s.key[f] & KeyBadFrm)
}

// Mark frame containing addr as bad.
func (s *Storage) MarkBadFrame(addr uint64) {
	if len(s.mem) == 0 || addr > s.Limit() {
		return
	}
	s.key[addr>>s.keyShift] |= KeyBadFrm
}

// Reference sets reference bit of frame holding addr.
func (s *Storage) Reference(addr uint64) {
	if len(s.mem) == 0 || addr > s.Limit() {
		return
	}
	s.key[addr>>s.keyShift] |= KeyRef
}
