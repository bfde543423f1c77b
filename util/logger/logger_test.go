/*
 * S370 - Log handler
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

package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandler(t *testing.T) {
	var file, stderr bytes.Buffer
	h := NewHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}, false)
	h.stderr = &stderr
	log := slog.New(h)

	log.Info("Loaded", "file", "ipl.bin")
	log.With("cpu", "CP01").Warn("Timed out")
	log.Debug("Quiet")

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Log lines got: %d expected: 3", len(lines))
	}
	if !strings.HasSuffix(lines[0], "INFO: Loaded ipl.bin") {
		t.Errorf("Log line got: %s", lines[0])
	}
	if !strings.HasSuffix(lines[1], "WARN: Timed out CP01") {
		t.Errorf("Log line got: %s", lines[1])
	}
	if strings.Count(stderr.String(), "\n") != 1 || !strings.Contains(stderr.String(), "Timed out") {
		t.Errorf("Stderr got: %s expected only warning", stderr.String())
	}

	stderr.Reset()
	h = NewHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}, true)
	h.stderr = &stderr
	slog.New(h).Debug("Loud")
	if !strings.Contains(stderr.String(), "DEBUG: Loud") {
		t.Errorf("Stderr got: %s expected debug line", stderr.String())
	}
}

func TestHandlerLevel(t *testing.T) {
	var file bytes.Buffer
	h := NewHandler(&file, &slog.HandlerOptions{Level: slog.LevelWarn}, false)
	h.stderr = &bytes.Buffer{}
	log := slog.New(h)
	log.Info("Hidden")
	if file.Len() != 0 {
		t.Errorf("Info logged at warn level: %s", file.String())
	}
}
