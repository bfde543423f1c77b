/*
 * S370 - System configuration options
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

package coreconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	config "github.com/rcornwell/S370stor/config/configparser"
	"github.com/rcornwell/S370stor/emu/arch"
	"github.com/rcornwell/S370stor/emu/core"
	"github.com/rcornwell/S370stor/emu/cpu"
)

var (
	mu       sync.Mutex
	settings = core.DefaultSettings()
)

// register options on initialize.
func init() {
	config.RegisterOption("ARCH", setArch)
	config.RegisterOption("MAINSIZE", setMainSize)
	config.RegisterOption("CPUS", setCPUs)
	config.RegisterOption("SNAPSHOTS", setSnapshots)
	config.RegisterSwitch("AUTOSTART", setAutoStart)
	config.RegisterModel("CPU", config.TypeModel, setCPU)
	config.RegisterModel("SIE", config.TypeModel, setSIE)
	config.RegisterModel("LOAD", config.TypeOptions, setLoad)
	config.RegisterModel("KEY", config.TypeOptions, setKey)
}

// Settings returns settings collected from configuration.
func Settings() *core.Settings {
	mu.Lock()
	defer mu.Unlock()
	return settings
}

// Reset discards collected settings.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	settings = core.DefaultSettings()
}

func setArch(_ uint16, value string, _ []config.Option) error {
	p, err := arch.Lookup(value)
	if err != nil {
		return fmt.Errorf("%w: %s", err, value)
	}
	mu.Lock()
	settings.Profile = p
	mu.Unlock()
	return nil
}

// Parse size with optional K or M suffix.
func parseSize(value string) (uint64, error) {
	value = strings.ToUpper(value)
	shift := 0
	switch {
	case strings.HasSuffix(value, "K"):
		shift = 10
	case strings.HasSuffix(value, "M"):
		shift = 20
	case strings.HasSuffix(value, "G"):
		shift = 30
	}
	if shift != 0 {
		value = value[:len(value)-1]
	}
	size, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, errors.New("size must be a number: " + value)
	}
	return size << shift, nil
}

func setMainSize(_ uint16, value string, _ []config.Option) error {
	size, err := parseSize(value)
	if err != nil {
		return err
	}
	mu.Lock()
	settings.MainSize = size
	mu.Unlock()
	return nil
}

func setCPUs(_ uint16, value string, _ []config.Option) error {
	n, err := strconv.ParseUint(value, 10, 8)
	if err != nil || n == 0 {
		return errors.New("number of CPUs must be 1 to 255: " + value)
	}
	mu.Lock()
	settings.CPUs = int(n)
	mu.Unlock()
	return nil
}

func setSnapshots(_ uint16, value string, _ []config.Option) error {
	n, err := strconv.ParseUint(value, 10, 16)
	if err != nil || n == 0 {
		return errors.New("snapshots must be a positive number: " + value)
	}
	mu.Lock()
	settings.Snapshots = int(n)
	mu.Unlock()
	return nil
}

// Mark CPUs running after configuration.
func setAutoStart(_ uint16, _ string, _ []config.Option) error {
	mu.Lock()
	settings.AutoStart = true
	mu.Unlock()
	return nil
}

func parseHex(opt config.Option) (uint64, error) {
	value, err := strconv.ParseUint(opt.EqualOpt, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("option %s requires hex value: %s", opt.Name, opt.EqualOpt)
	}
	return value, nil
}

// Split register option like CR12 into kind and number.
func regOption(name string) (string, int, bool) {
	for _, kind := range []string{"GR", "CR", "AR"} {
		if !strings.HasPrefix(name, kind) {
			continue
		}
		n, err := strconv.ParseUint(name[2:], 10, 4)
		if err != nil {
			return "", 0, false
		}
		return kind, int(n), true
	}
	return "", 0, false
}

var ascNames = map[string]cpu.ASC{
	"P":  cpu.ASCPrimary,
	"S":  cpu.ASCSecondary,
	"H":  cpu.ASCHome,
	"AR": cpu.ASCAccessReg,
}

// CPU <addr> PREFIX=hex IA=hex KEY=hex DAT|NODAT ASC=P|S|H|AR AMODE=n GRn=hex CRn=hex ARn=hex.
func setCPU(addr uint16, _ string, options []config.Option) error {
	mu.Lock()
	defer mu.Unlock()
	cs := settings.CPUByAddr(addr)
	for _, opt := range options {
		name := strings.ToUpper(opt.Name)
		switch name {
		case "DAT":
			cs.DAT = true
			continue
		case "NODAT":
			cs.DAT = false
			continue
		case "ASC":
			asc, ok := ascNames[strings.ToUpper(opt.EqualOpt)]
			if !ok {
				return errors.New("ASC must be P, S, H or AR: " + opt.EqualOpt)
			}
			cs.ASC = asc
			continue
		case "AMODE":
			switch opt.EqualOpt {
			case "24", "31", "64":
				n, _ := strconv.ParseUint(opt.EqualOpt, 10, 8)
				cs.AMode = uint8(n)
			default:
				return errors.New("AMODE must be 24, 31 or 64: " + opt.EqualOpt)
			}
			continue
		}

		value, err := parseHex(opt)
		if err != nil {
			return err
		}
		switch name {
		case "PREFIX":
			cs.Prefix = value
		case "IA":
			cs.IA = value
		case "KEY":
			cs.Key = uint8(value & 0xf)
		default:
			kind, n, ok := regOption(name)
			if !ok {
				return errors.New("CPU option invalid: " + opt.Name)
			}
			switch kind {
			case "GR":
				cs.GR[n] = value
			case "CR":
				cs.CR[n] = value
			case "AR":
				cs.AR[n] = uint32(value)
			}
		}
	}
	return nil
}

// SIE <guest> HOST=addr ORIGIN=hex LIMIT=hex PREFIX=hex DAT CRn=hex.
func setSIE(addr uint16, _ string, options []config.Option) error {
	ss := core.SIESettings{Guest: addr, Host: config.NoAddr, CR: map[int]uint64{}}
	for _, opt := range options {
		name := strings.ToUpper(opt.Name)
		if name == "DAT" {
			ss.DAT = true
			continue
		}
		value, err := parseHex(opt)
		if err != nil {
			return err
		}
		switch name {
		case "HOST":
			ss.Host = uint16(value)
		case "ORIGIN":
			ss.Origin = value
		case "LIMIT":
			ss.Limit = value
		case "PREFIX":
			ss.Prefix = value
		default:
			kind, n, ok := regOption(name)
			if !ok || kind != "CR" {
				return errors.New("SIE option invalid: " + opt.Name)
			}
			ss.CR[n] = value
		}
	}
	if ss.Host == config.NoAddr {
		return errors.New("SIE requires HOST")
	}
	mu.Lock()
	settings.SIE = append(settings.SIE, ss)
	mu.Unlock()
	return nil
}

// LOAD <hexaddr> FILE=name.
func setLoad(_ uint16, value string, options []config.Option) error {
	addr, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return errors.New("load address must be hex: " + value)
	}
	file := ""
	for _, opt := range options {
		if strings.ToUpper(opt.Name) != "FILE" {
			return errors.New("load option invalid: " + opt.Name)
		}
		file = opt.EqualOpt
	}
	if file == "" {
		return errors.New("load requires FILE")
	}
	mu.Lock()
	settings.Load = append(settings.Load, core.LoadSettings{Addr: addr, File: file})
	mu.Unlock()
	return nil
}

// KEY <hexaddr> VALUE=hex [BAD].
func setKey(_ uint16, value string, options []config.Option) error {
	addr, err := strconv.ParseUint(value, 16, 64)
	if err != nil {
		return errors.New("key address must be hex: " + value)
	}
	ks := core.KeySettings{Addr: addr}
	haveValue := false
	for _, opt := range options {
		switch strings.ToUpper(opt.Name) {
		case "VALUE":
			key, err := parseHex(opt)
			if err != nil || key > 0xff {
				return errors.New("key value must be hex byte: " + opt.EqualOpt)
			}
			ks.Value = uint8(key)
			haveValue = true
		case "BAD":
			if opt.EqualOpt != "" {
				return errors.New("key BAD takes no value")
			}
			ks.Bad = true
		default:
			return errors.New("key option invalid: " + opt.Name)
		}
	}
	if !haveValue {
		return errors.New("key requires VALUE")
	}
	mu.Lock()
	settings.Key = append(settings.Key, ks)
	mu.Unlock()
	return nil
}
