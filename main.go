/*
 * S370 - Main process
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

package main

import (
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/rcornwell/S370stor/command/command"
	"github.com/rcornwell/S370stor/command/reader"
	config "github.com/rcornwell/S370stor/config/configparser"
	"github.com/rcornwell/S370stor/config/coreconfig"
	"github.com/rcornwell/S370stor/emu/core"
	"github.com/rcornwell/S370stor/util/debug"
	"github.com/rcornwell/S370stor/util/logger"

	_ "github.com/rcornwell/S370stor/config/debugconfig"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "S370.cfg", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Log debug to console")
	optExec := getopt.StringLong("exec", 'e', "", "Run one command and exit")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("Unable to create log file: " + err.Error())
			os.Exit(1)
		}
		defer file.Close()
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	var out io.Writer
	if file != nil {
		out = file
	}
	Logger := slog.New(logger.NewHandler(out, &slog.HandlerOptions{Level: programLevel, AddSource: false}, *optDebug))
	slog.SetDefault(Logger)

	Logger.Info("S370 Started")

	if _, err := os.Stat(*optConfig); err == nil {
		if err := config.LoadConfigFile(*optConfig); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	} else if getopt.IsSet("config") {
		Logger.Error("Configuration file " + *optConfig + " can't be found")
		os.Exit(1)
	}
	defer debug.Close()

	sys, err := core.New(coreconfig.Settings())
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	// Start main emulator.
	go sys.Start()
	session := command.NewSession(sys, os.Stdout)

	if *optExec != "" {
		_, err := reader.Execute(session, *optExec)
		sys.Stop()
		if err != nil {
			debug.Close()
			os.Exit(2)
		}
		return
	}

	reader.ConsoleReader(session)
	sys.Stop()
	Logger.Info("Servers stopped.")
}
