// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frozolotl/classfile"
)

var jobs = make(chan string)

// dump is the dump subcommand's Run function: it accepts a mix of files
// and directories and dumps every .class file found among them.
func dump(cmd *cobra.Command, args []string) {
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loopFilesWorker()
		}()
	}

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "classdump: %v\n", err)
			continue
		}
		if info.IsDir() {
			if err := loopDirsFiles(path); err != nil {
				fmt.Fprintf(os.Stderr, "classdump: %v\n", err)
			}
		} else {
			jobs <- path
		}
	}

	close(jobs)
	wg.Wait()
}

// loopDirsFiles walks dir recursively, feeding every regular file to the
// jobs channel for loopFilesWorker to pick up.
func loopDirsFiles(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			jobs <- path
		}
		return nil
	})
}

// loopFilesWorker drains jobs, dumping each path with a .class extension
// and silently skipping every other path. A .class file that fails to open
// or parse is reported on stderr.
func loopFilesWorker() {
	for path := range jobs {
		if !strings.EqualFold(filepath.Ext(path), ".class") {
			continue
		}
		if err := dumpFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "classdump: %s: %v\n", path, err)
		}
	}
}

func dumpFile(path string) error {
	f, err := classfile.Open(path, nil)
	if err != nil {
		return err
	}
	defer f.Close()

	class, err := f.Parse()
	if err != nil {
		return err
	}

	if wantJSON || wantAll {
		return dumpJSON(path, class)
	}
	return dumpText(path, class)
}

// classSummary is a flattened, JSON-friendly view of a *classfile.Class,
// since Class itself holds unexported lazy cursors.
type classSummary struct {
	Path        string          `json:"path"`
	MajorMinor  string          `json:"version"`
	AccessFlags string          `json:"access_flags"`
	ThisClass   string          `json:"this_class"`
	SuperClass  string          `json:"super_class"`
	Interfaces  []string        `json:"interfaces,omitempty"`
	Fields      []memberSummary `json:"fields,omitempty"`
	Methods     []memberSummary `json:"methods,omitempty"`
}

type memberSummary struct {
	AccessFlags string   `json:"access_flags"`
	Name        string   `json:"name"`
	Descriptor  string   `json:"descriptor"`
	Code        []string `json:"code,omitempty"`
}

func summarize(path string, class *classfile.Class) classSummary {
	pool := class.Pool()
	v := class.Version()

	summary := classSummary{
		Path:        path,
		MajorMinor:  fmt.Sprintf("%d.%d", v.Major, v.Minor),
		AccessFlags: accessFlagsString(class.AccessFlags()),
		ThisClass:   className(pool, class.ThisClass()),
		SuperClass:  className(pool, class.SuperClass()),
	}

	interfaces := class.Interfaces()
	for idx, ok := interfaces.Next(); ok; idx, ok = interfaces.Next() {
		summary.Interfaces = append(summary.Interfaces, className(pool, idx))
	}

	if wantFields || wantAll {
		fields := class.Fields()
		for field, ok := fields.Next(); ok; field, ok = fields.Next() {
			summary.Fields = append(summary.Fields, memberSummary{
				AccessFlags: accessFlagsString(field.AccessFlags),
				Name:        utf8String(pool, field.Name),
				Descriptor:  utf8String(pool, field.Descriptor),
			})
		}
	}

	if wantMethods || wantCode || wantAll {
		methods := class.Methods()
		for method, ok := methods.Next(); ok; method, ok = methods.Next() {
			member := memberSummary{
				AccessFlags: accessFlagsString(method.AccessFlags),
				Name:        utf8String(pool, method.Name),
				Descriptor:  utf8String(pool, method.Descriptor),
			}
			if wantCode || wantAll {
				member.Code = disassemble(pool, method)
			}
			summary.Methods = append(summary.Methods, member)
		}
	}

	return summary
}

func disassemble(pool *classfile.ConstantPool, method classfile.Method) []string {
	attrs := method.Attributes()
	for attr, ok := attrs.Next(); ok; attr, ok = attrs.Next() {
		content, err := attr.ReadContent(pool)
		if err != nil || content.Kind != classfile.AttrKindCode {
			continue
		}
		var lines []string
		insns := content.Code.Iter()
		for insn, ok := insns.Next(); ok; insn, ok = insns.Next() {
			lines = append(lines, fmt.Sprintf("%4d: %s", insn.Offset, insn.Opcode.Mnemonic()))
		}
		return lines
	}
	return nil
}

func className(pool *classfile.ConstantPool, idx classfile.Index[classfile.ClassItemTag]) string {
	if idx == 0 {
		return ""
	}
	value, err := pool.RetrieveClass(idx)
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}
	return value.Name.String()
}

func utf8String(pool *classfile.ConstantPool, idx classfile.Index[classfile.Utf8Tag]) string {
	item, err := pool.GetUtf8(idx)
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}
	return item.Content.String()
}

func accessFlagsString(flags classfile.AccessFlags) string {
	names := []struct {
		bit  classfile.AccessFlags
		name string
	}{
		{classfile.AccPublic, "public"},
		{classfile.AccPrivate, "private"},
		{classfile.AccProtected, "protected"},
		{classfile.AccStatic, "static"},
		{classfile.AccFinal, "final"},
		{classfile.AccSuper, "super"},
		{classfile.AccInterface, "interface"},
		{classfile.AccAbstract, "abstract"},
		{classfile.AccSynthetic, "synthetic"},
		{classfile.AccAnnotation, "annotation"},
		{classfile.AccEnum, "enum"},
	}
	var set []string
	for _, n := range names {
		if flags.Has(n.bit) {
			set = append(set, n.name)
		}
	}
	return strings.Join(set, " ")
}

// dumpJSON pretty-prints a class summary as indented JSON.
func dumpJSON(path string, class *classfile.Class) error {
	summary := summarize(path, class)
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	fmt.Println(prettyPrint(raw))
	return nil
}

// prettyPrint re-indents a JSON document for terminal display.
func prettyPrint(raw []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return string(raw)
	}
	return out.String()
}

// dumpText renders a class summary as a tab-aligned table, mirroring the
// teacher's plain-text dump mode.
func dumpText(path string, class *classfile.Class) error {
	summary := summarize(path, class)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "path:\t%s\n", summary.Path)
	fmt.Fprintf(w, "version:\t%s\n", summary.MajorMinor)
	fmt.Fprintf(w, "access flags:\t%s\n", summary.AccessFlags)
	fmt.Fprintf(w, "this class:\t%s\n", summary.ThisClass)
	fmt.Fprintf(w, "super class:\t%s\n", summary.SuperClass)
	for _, iface := range summary.Interfaces {
		fmt.Fprintf(w, "interface:\t%s\n", iface)
	}
	for _, field := range summary.Fields {
		fmt.Fprintf(w, "field:\t%s %s %s\n", field.AccessFlags, field.Descriptor, field.Name)
	}
	for _, method := range summary.Methods {
		fmt.Fprintf(w, "method:\t%s %s %s\n", method.AccessFlags, method.Descriptor, method.Name)
		for _, line := range method.Code {
			fmt.Fprintf(w, "\t\t%s\n", line)
		}
	}
	return w.Flush()
}
