// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package symbolizer

import (
	"os"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessStatus is a point-in-time resource snapshot of the running
// profsink process, pushed to the observation ring alongside the
// symbolizer's own queue depth so an operator can correlate a stalled
// queue with memory or FD pressure.
type ProcessStatus struct {
	RSSBytes uint64
	OpenFDs  int32
}

// CurrentProcessStatus reads the calling process's own RSS and open
// file descriptor count.
func CurrentProcessStatus() (ProcessStatus, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ProcessStatus{}, err
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return ProcessStatus{}, err
	}
	fds, err := proc.NumFDs()
	if err != nil {
		return ProcessStatus{}, err
	}
	return ProcessStatus{RSSBytes: mem.RSS, OpenFDs: fds}, nil
}
