// Package loader reads assembly programs and memory images from disk.
package loader

import (
	"fmt"
	"os"

	"github.com/sarchlab/p5sim/insts"
)

// LoadProgram reads an assembly source file and parses it into a program.
// Parse failures are returned as *insts.ParseError wrapped with the path.
func LoadProgram(path string) ([]insts.Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	prog, err := insts.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return prog, nil
}
