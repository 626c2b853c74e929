// Copyright 2017-25 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/destel/rill"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "coastline-filter",
		Short: "Filter an OSM PBF file down to its coastline geometry",
	}

	root.AddCommand(newFilterCommand())
	root.AddCommand(newInfoCommand())

	return root
}

func newFilterCommand() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "filter <input> <output>",
		Short: "Keep only natural=coastline ways, their nodes, and natural=coastline relations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]

			fi, err := os.Stat(in)
			if err != nil {
				return err
			}

			if !fi.IsDir() {
				return runOne(in, out, false)
			}

			return runDir(in, out, workers)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 1, "number of files to filter concurrently when <input> is a directory")

	return cmd
}

func runOne(inPath, outPath string, quiet bool) error {
	stats, err := runFilter(inPath, outPath, quiet)
	if err != nil {
		return err
	}

	printSummary(inPath, stats)

	return nil
}

// runDir filters every *.osm.pbf file in inDir into a like-named file
// under outDir, fanning out across workers concurrent goroutines via
// rill. This is the only place in the program concurrency appears:
// each file is still filtered by the synchronous two-pass algorithm in
// filter.go, per file, start to finish.
func runDir(inDir, outDir string, workers int) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	matches, err := filepath.Glob(filepath.Join(inDir, "*.osm.pbf"))
	if err != nil {
		return err
	}

	if workers < 1 {
		workers = 1
	}

	paths := rill.FromSlice(matches, nil)

	return rill.ForEach(paths, workers, func(inPath string) error {
		outPath := filepath.Join(outDir, filepath.Base(inPath))

		return runOne(inPath, outPath, true)
	})
}

func printSummary(inPath string, stats filterStats) {
	fmt.Printf(
		"%s: %s/%s nodes, %s/%s ways, %s/%s relations kept\n",
		inPath,
		humanize.Comma(stats.NodesOut), humanize.Comma(stats.NodesIn),
		humanize.Comma(stats.WaysOut), humanize.Comma(stats.WaysIn),
		humanize.Comma(stats.RelationsOut), humanize.Comma(stats.RelationsIn),
	)
}
