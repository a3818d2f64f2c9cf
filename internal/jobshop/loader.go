package jobshop

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseInstance reads a problem instance in the standard job shop text
// format: a header line with the job and machine counts, followed by
// one line per job holding machine/duration pairs. Blank lines and
// lines starting with '#' are skipped.
func ParseInstance(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines [][]int
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		row := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("parse instance: line %d: %q is not an integer", len(lines)+1, f)
			}
			row[i] = v
		}
		lines = append(lines, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse instance: %w", err)
	}

	if len(lines) == 0 || len(lines[0]) < 2 {
		return nil, fmt.Errorf("parse instance: missing header line (want: jobs machines)")
	}
	nJobs, nMachines := lines[0][0], lines[0][1]
	if len(lines)-1 != nJobs {
		return nil, fmt.Errorf("parse instance: header declares %d jobs, found %d job lines", nJobs, len(lines)-1)
	}

	jobs := make([][]Step, nJobs)
	for j, row := range lines[1:] {
		if len(row)%2 != 0 {
			return nil, fmt.Errorf("parse instance: job %d: odd number of values, want machine/duration pairs", j)
		}
		steps := make([]Step, 0, len(row)/2)
		for i := 0; i < len(row); i += 2 {
			steps = append(steps, Step{Machine: row[i], Duration: row[i+1]})
		}
		jobs[j] = steps
	}
	return NewInstance(jobs, nMachines)
}

// LoadInstance reads an instance file from disk. See ParseInstance.
func LoadInstance(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseInstance(f)
}
