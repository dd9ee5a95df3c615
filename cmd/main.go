// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose     bool
	wantJSON    bool
	wantFields  bool
	wantMethods bool
	wantCode    bool
	wantAll     bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "classdump",
		Short: "A Java class file parser",
		Long:  "A .class file reader built for quick structural inspection",
		Run: func(cmd *cobra.Command, args []string) {
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps the file",
		Long:  "Dumps the structure of a Java class file, or every .class file under a directory",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	dumpCmd.Flags().BoolVarP(&wantJSON, "json", "", false, "dump the class summary as JSON")
	dumpCmd.Flags().BoolVarP(&wantFields, "fields", "", false, "dump fields")
	dumpCmd.Flags().BoolVarP(&wantMethods, "methods", "", false, "dump methods")
	dumpCmd.Flags().BoolVarP(&wantCode, "code", "", false, "disassemble method bodies")
	dumpCmd.Flags().BoolVarP(&wantAll, "all", "", false, "dump everything")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
