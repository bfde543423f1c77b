/*
 * S370 - Debug options configuration
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

package debugconfig

import (
	"errors"
	"strings"

	config "github.com/rcornwell/S370stor/config/configparser"
	"github.com/rcornwell/S370stor/emu/cpu"
	"github.com/rcornwell/S370stor/emu/storview"
)

// register debug option on initialize.
func init() {
	config.RegisterModel("DEBUG", config.TypeOptions, setDebug)
}

var modules = map[string]func(string) error{
	"CPU":     cpu.Debug,
	"STORAGE": storview.Debug,
}

// Enable debug options for a module.
func setDebug(_ uint16, module string, options []config.Option) error {
	enable, ok := modules[strings.ToUpper(module)]
	if !ok {
		return errors.New("debug option invalid: " + module)
	}
	if len(options) == 0 {
		return errors.New("debug " + module + " requires options")
	}

	for _, opt := range options {
		err := enable(strings.ToUpper(opt.Name))
		if err != nil {
			return err
		}
		for _, value := range opt.Value {
			err = enable(strings.ToUpper(*value))
			if err != nil {
				return err
			}
		}
	}
	return nil
}
