// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cmd implements the DMA simulator console commands.
package cmd

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/usbarmory/GoTEE-dma350/trusted_os_sim/internal"
)

// Banner is the console welcome banner.
var Banner string

// System is the simulated environment commands operate on.
var System *internal.System

// CmdFn represents a command handler.
type CmdFn func(term *term.Terminal, arg []string) (res string, err error)

// Cmd represents a console command.
type Cmd struct {
	Name    string
	Args    int
	Pattern *regexp.Regexp
	Syntax  string
	Help    string
	Fn      CmdFn
}

var cmds = make(map[string]*Cmd)

// Add registers a console command, commands without a pattern match their
// name.
func Add(cmd Cmd) {
	if cmd.Pattern == nil {
		cmd.Pattern = regexp.MustCompile(`^` + cmd.Name + `$`)
	}

	cmds[cmd.Name] = &cmd
}

// Help returns the list of registered commands.
func Help(term *term.Terminal) string {
	var names []string

	for name := range cmds {
		names = append(names, name)
	}

	sort.Strings(names)

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options = table.OptionsNoBordersAndSeparators

	for _, name := range names {
		t.AppendRow(table.Row{cmds[name].Name, cmds[name].Syntax, "# " + cmds[name].Help})
	}

	help := t.Render()

	if term != nil {
		return string(term.Escape.Cyan) + help + string(term.Escape.Reset)
	}

	return help
}

func match(line string) (cmd *Cmd, arg []string) {
	for _, c := range cmds {
		if m := c.Pattern.FindStringSubmatch(line); len(m) > 0 && len(m)-1 == c.Args {
			return c, m[1:]
		}
	}

	return
}

// Handle executes a console command line.
func Handle(term *term.Terminal, line string) (err error) {
	cmd, arg := match(line)

	if cmd == nil {
		return errors.New("unknown command, type `help`")
	}

	res, err := cmd.Fn(term, arg)

	if err != nil {
		return
	}

	if len(res) > 0 {
		fmt.Fprintln(term, res)
	}

	return
}
