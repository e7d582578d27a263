package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Matrix holds bigram connection costs between adjacent words, indexed by
// the right id of the preceding word and the left id of the following word.
// Id 0 is reserved for sentence boundaries (BOS/EOS).
type Matrix struct {
	rights int
	lefts  int
	costs  []int16
}

// NewMatrix returns a zero-cost matrix of the given size.
func NewMatrix(rights, lefts int) *Matrix {
	return &Matrix{rights: rights, lefts: lefts, costs: make([]int16, rights*lefts)}
}

// Rights returns the number of right ids.
func (m *Matrix) Rights() int { return m.rights }

// Lefts returns the number of left ids.
func (m *Matrix) Lefts() int { return m.lefts }

// ValidRight reports whether id is a right id of m.
func (m *Matrix) ValidRight(id int) bool { return id >= 0 && id < m.rights }

// ValidLeft reports whether id is a left id of m.
func (m *Matrix) ValidLeft(id int) bool { return id >= 0 && id < m.lefts }

// Set stores a connection cost.
func (m *Matrix) Set(right, left, cost int) {
	m.costs[right*m.lefts+left] = int16(cost)
}

// Cost returns the connection cost from right to left.
func (m *Matrix) Cost(right, left int) int {
	return int(m.costs[right*m.lefts+left])
}

// LoadMatrix parses the matrix.def format: a header line "rights lefts"
// followed by "right left cost" lines. Pairs not listed cost 0.
func LoadMatrix(r io.Reader) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	var m *Matrix

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		nums := make([]int, len(fields))
		for i, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			nums[i] = n
		}

		if m == nil {
			if len(nums) != 2 || nums[0] <= 0 || nums[1] <= 0 {
				return nil, fmt.Errorf("line %d: expected header \"rights lefts\"", lineNum)
			}
			m = NewMatrix(nums[0], nums[1])
			continue
		}
		if len(nums) != 3 {
			return nil, fmt.Errorf("line %d: expected 3 fields, got %d", lineNum, len(nums))
		}
		if !m.ValidRight(nums[0]) || !m.ValidLeft(nums[1]) {
			return nil, fmt.Errorf("line %d: id pair %d/%d out of range", lineNum, nums[0], nums[1])
		}
		if nums[2] < -32768 || nums[2] > 32767 {
			return nil, fmt.Errorf("line %d: cost %d out of int16 range", lineNum, nums[2])
		}
		m.Set(nums[0], nums[1], nums[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("empty matrix")
	}
	return m, nil
}

// LoadMatrixFile is a convenience wrapper that opens a file path.
func LoadMatrixFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadMatrix(f)
}
