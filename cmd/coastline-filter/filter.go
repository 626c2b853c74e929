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

// coastline-filter reads an OpenStreetMap PBF file, collects the set
// of node identifiers referenced by "natural=coastline" ways, and
// re-emits only that subset of nodes, the coastline ways themselves,
// and every relation tagged natural=coastline, to a second file.
// It illustrates the traversal API exposed by the osmpbf package.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/halftrail/osmpbf"
	"github.com/halftrail/osmpbf/model"
)

const (
	naturalTag   = "natural"
	coastlineTag = "coastline"
)

// filterStats summarizes what a filter pass did, for the CLI's
// closing summary line and for the info subcommand.
type filterStats struct {
	NodesIn, NodesOut         int64
	WaysIn, WaysOut           int64
	RelationsIn, RelationsOut int64
}

// coastlineCollector is the pass-1 visitor: it records every node id
// referenced by a way tagged natural=coastline, and the id of every
// such way, without writing anything out.
type coastlineCollector struct {
	osmpbf.BaseVisitor

	nodeIDs map[model.ID]struct{}
	wayIDs  map[model.ID]struct{}
}

func newCoastlineCollector() *coastlineCollector {
	return &coastlineCollector{
		nodeIDs: make(map[model.ID]struct{}),
		wayIDs:  make(map[model.ID]struct{}),
	}
}

func (c *coastlineCollector) VisitWay(id model.ID, refs []model.ID, tags map[string]string) error {
	if tags[naturalTag] != coastlineTag {
		return nil
	}

	c.wayIDs[id] = struct{}{}

	for _, ref := range refs {
		c.nodeIDs[ref] = struct{}{}
	}

	return nil
}

// pass1 runs the coastline collector over r and returns the sets of
// node and way ids the second pass must keep.
func pass1(r io.Reader) (*coastlineCollector, error) {
	c := newCoastlineCollector()
	if err := osmpbf.NewOsmReader(r).Accept(c); err != nil {
		return nil, fmt.Errorf("pass 1: %w", err)
	}

	return c, nil
}

// coastlineFilterVisitor is the pass-2 visitor: it re-emits the
// subset of entities the collector identified through an embedded
// WriterVisitor, tracking whether the most recently visited entity
// was kept so a following VisitInfo call can be routed correctly.
type coastlineFilterVisitor struct {
	osmpbf.BaseVisitor

	out     *osmpbf.WriterVisitor
	nodeIDs map[model.ID]struct{}
	wayIDs  map[model.ID]struct{}

	kept  bool
	stats filterStats
}

func newCoastlineFilterVisitor(out *osmpbf.WriterVisitor, c *coastlineCollector) *coastlineFilterVisitor {
	return &coastlineFilterVisitor{out: out, nodeIDs: c.nodeIDs, wayIDs: c.wayIDs}
}

func (v *coastlineFilterVisitor) VisitHeader(header *model.Header) error {
	return v.out.VisitHeader(header)
}

func (v *coastlineFilterVisitor) VisitNode(id model.ID, latDeg, lonDeg model.Degrees) error {
	v.stats.NodesIn++

	if _, ok := v.nodeIDs[id]; !ok {
		v.kept = false

		return nil
	}

	v.stats.NodesOut++
	v.kept = true

	return v.out.VisitNode(id, latDeg, lonDeg)
}

func (v *coastlineFilterVisitor) VisitWay(id model.ID, refs []model.ID, tags map[string]string) error {
	v.stats.WaysIn++

	if _, ok := v.wayIDs[id]; !ok {
		v.kept = false

		return nil
	}

	v.stats.WaysOut++
	v.kept = true

	return v.out.VisitWay(id, refs, tags)
}

func (v *coastlineFilterVisitor) VisitRelation(id model.ID, members []model.Member, tags map[string]string) error {
	v.stats.RelationsIn++

	if tags[naturalTag] != coastlineTag {
		v.kept = false

		return nil
	}

	v.stats.RelationsOut++
	v.kept = true

	return v.out.VisitRelation(id, members, tags)
}

func (v *coastlineFilterVisitor) VisitInfo(version int32, timestampMs, changeset int64, uid model.UID, userSID string, visible bool) error {
	if !v.kept {
		return nil
	}

	return v.out.VisitInfo(version, timestampMs, changeset, uid, userSID, visible)
}

func (v *coastlineFilterVisitor) End() error {
	return v.out.End()
}

// pass2 re-reads r, using the sets c collected, and writes the
// filtered stream to w.
func pass2(r io.Reader, w io.Writer, c *coastlineCollector) (filterStats, error) {
	out := osmpbf.NewWriterVisitor(w)
	v := newCoastlineFilterVisitor(out, c)

	if err := osmpbf.NewOsmReader(r).Accept(v); err != nil {
		return v.stats, fmt.Errorf("pass 2: %w", err)
	}

	return v.stats, nil
}

// runFilter performs the full two-pass coastline filter from inPath to
// outPath. When quiet is false, the (larger, user-visible) second pass
// is wrapped with a byte-progress bar on stderr.
func runFilter(inPath, outPath string, quiet bool) (filterStats, error) {
	c, err := withOpen(inPath, pass1)
	if err != nil {
		return filterStats{}, err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return filterStats{}, fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer out.Close()

	var stats filterStats

	err = func() error {
		f, err := os.Open(inPath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", inPath, err)
		}
		defer f.Close()

		in, err := wrapInputFile(f, quiet)
		if err != nil {
			return err
		}
		defer in.Close()

		stats, err = pass2(in, out, c)

		return err
	}()

	return stats, err
}

func withOpen(path string, fn func(io.Reader) (*coastlineCollector, error)) (*coastlineCollector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return fn(f)
}
