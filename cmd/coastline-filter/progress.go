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
	"io"
	"os"

	pb "gopkg.in/cheggaaa/pb.v1"
)

// progressReader is a ReadCloser with an associated ProgressBar. Closing
// it closes the delegate and clears the terminal line of progress output.
type progressReader struct {
	r   io.ReadCloser
	bar *pb.ProgressBar
}

// wrapInputFile wraps f with a ProgressBar tracking bytes read against
// the file's total size. quiet suppresses the bar entirely, for use in
// --workers mode where N bars would otherwise fight over one terminal.
func wrapInputFile(f *os.File, quiet bool) (io.ReadCloser, error) {
	if quiet {
		return f, nil
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	bar := pb.New(int(fi.Size())).SetUnits(pb.U_BYTES_DEC).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()

	return progressReader{r: bar.NewProxyReader(f), bar: bar}, nil
}

func (p progressReader) Read(buf []byte) (int, error) {
	return p.r.Read(buf)
}

func (p progressReader) Close() error {
	p.bar.Output = nil
	p.bar.NotPrint = true
	p.bar.Finish()

	fmt.Fprint(os.Stderr, "\033[2K\r")

	return p.r.Close()
}
