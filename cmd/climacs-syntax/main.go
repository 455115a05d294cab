// Copyright 2024-2026 The Climacs Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command climacs-syntax parses Lisp source files and reports on their
// structure: a parse tree dump, or per-line indentation suggestions.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/semaphore"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/parser"
	"github.com/quek/climacs/query"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	var verbose int

	rootCmd := &cobra.Command{
		Use:   "climacs-syntax",
		Short: "Structural analysis of Lisp source files",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbose, nil)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity")

	dumpCmd := &cobra.Command{
		Use:   "dump <file>...",
		Short: "Parse files and print their syntax trees",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return forEachFile(cmd.Context(), args, func(path, text string) (string, error) {
				tree := parser.Parse(buffer.New(text))
				return tree.Dump(), nil
			})
		},
	}

	var rulesPath string
	var tabstop int
	indentCmd := &cobra.Command{
		Use:   "indent <file>...",
		Short: "Print the suggested indentation of every line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := query.DefaultTable()
			if rulesPath != "" {
				f, err := os.Open(rulesPath)
				if err != nil {
					return fmt.Errorf("open rules: %w", err)
				}
				defer f.Close()
				table, err = query.LoadTable(f)
				if err != nil {
					return err
				}
			}
			if tabstop > 0 {
				table.Tabstop = tabstop
			}
			return forEachFile(cmd.Context(), args, func(path, text string) (string, error) {
				return indentReport(table, text), nil
			})
		},
	}
	indentCmd.Flags().StringVar(&rulesPath, "rules", "", "YAML file with extra indentation rules")
	indentCmd.Flags().IntVar(&tabstop, "tabstop", 0, "tab width for column arithmetic")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(indentCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// forEachFile analyzes the files concurrently, bounded by the CPU count,
// and prints the reports in argument order with a per-file header when
// more than one file was named.
func forEachFile(ctx context.Context, paths []string, analyze func(path, text string) (string, error)) error {
	log := commonlog.GetLogger("climacs-syntax")
	sem := semaphore.NewWeighted(int64(runtime.GOMAXPROCS(0)))

	type result struct {
		path   string
		report string
		err    error
	}
	results := make([]result, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			log.Debugf("analyzing %s", path)
			data, err := os.ReadFile(path)
			if err != nil {
				results[i] = result{path: path, err: err}
				return
			}
			report, err := analyze(path, string(data))
			results[i] = result{path: path, report: report, err: err}
		}()
	}
	wg.Wait()

	var errs []string
	for _, r := range results {
		if r.err != nil {
			log.Errorf("%s: %v", r.path, r.err)
			errs = append(errs, r.path)
			continue
		}
		if len(paths) > 1 {
			fmt.Printf("==> %s <==\n", r.path)
		}
		fmt.Print(r.report)
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("failed for %s", strings.Join(errs, ", "))
	}
	return nil
}

// indentReport renders each line prefixed with its suggested indentation
// column.
func indentReport(table *query.Table, text string) string {
	syn := parser.New(buffer.New(text))
	tree := syn.Update()

	var b strings.Builder
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, "%3d | %s\n", table.Indent(tree, offset), line)
		offset += len([]rune(line)) + 1
	}
	return b.String()
}
