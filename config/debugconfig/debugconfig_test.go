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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/rcornwell/S370stor/config/configparser"
)

func TestDebugOptions(t *testing.T) {
	cfg := "DEBUG CPU DAT,SNAPSHOT\nDEBUG STORAGE ALTER DISPLAY\n"
	require.NoError(t, config.LoadConfig(strings.NewReader(cfg)))
	assert.NoError(t, setDebug(0, "cpu", []config.Option{{Name: "art"}}))
}

func TestDebugErrors(t *testing.T) {
	tests := []string{
		"DEBUG DISK READ\n",
		"DEBUG CPU BOGUS\n",
		"DEBUG STORAGE ALTER,BOGUS\n",
		"DEBUG CPU\n",
	}
	for _, cfg := range tests {
		err := config.LoadConfig(strings.NewReader(cfg))
		assert.Error(t, err, "Debug option %q did not fail", strings.TrimSpace(cfg))
	}
	assert.EqualError(t, setDebug(0, "disk", nil), "debug option invalid: disk")
	assert.EqualError(t, setDebug(0, "STORAGE", nil), "debug STORAGE requires options")
}
