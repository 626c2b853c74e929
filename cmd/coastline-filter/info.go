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

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/halftrail/osmpbf"
	"github.com/halftrail/osmpbf/model"
)

// blockStats tallies blob and entity counts across an entire file, for
// the info subcommand.
type blockStats struct {
	Blobs                      int64
	Nodes, Ways, Relations     int64
	BBox                       *model.BoundingBox
	writingProgram, sourceTool string
}

type statsVisitor struct {
	osmpbf.BaseVisitor

	stats blockStats
}

func (v *statsVisitor) VisitHeader(header *model.Header) error {
	v.stats.Blobs++
	v.stats.writingProgram = header.WritingProgram
	v.stats.sourceTool = header.Source

	return nil
}

func (v *statsVisitor) VisitBlock(latOffset, lonOffset int64, granularity, dateGranularity int32) error {
	v.stats.Blobs++

	return nil
}

func (v *statsVisitor) VisitNode(id model.ID, latDeg, lonDeg model.Degrees) error {
	v.stats.Nodes++

	if v.stats.BBox == nil {
		v.stats.BBox = model.InitialBoundingBox()
	}

	v.stats.BBox.ExpandWithLatLng(latDeg, lonDeg)

	return nil
}

func (v *statsVisitor) VisitWay(id model.ID, refs []model.ID, tags map[string]string) error {
	v.stats.Ways++

	return nil
}

func (v *statsVisitor) VisitRelation(id model.ID, members []model.Member, tags map[string]string) error {
	v.stats.Relations++

	return nil
}

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <input>",
		Short: "Print blob and entity counts for an OSM PBF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			v := &statsVisitor{}
			if err := osmpbf.NewOsmReader(f).Accept(v); err != nil {
				return err
			}

			printStats(args[0], v.stats)

			return nil
		},
	}
}

func printStats(path string, s blockStats) {
	fmt.Printf("%s\n", path)
	fmt.Printf("  writing program: %s\n", s.writingProgram)
	fmt.Printf("  source:          %s\n", s.sourceTool)
	fmt.Printf("  blobs:           %s\n", humanize.Comma(s.Blobs))
	fmt.Printf("  nodes:           %s\n", humanize.Comma(s.Nodes))
	fmt.Printf("  ways:            %s\n", humanize.Comma(s.Ways))
	fmt.Printf("  relations:       %s\n", humanize.Comma(s.Relations))

	if s.BBox != nil {
		fmt.Printf("  bounding box:    %s\n", s.BBox)
	}
}
