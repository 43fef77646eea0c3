// Package config provides the JSON simulation configuration: tracing
// switches, the cycle limit and the initial architectural state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarchlab/p5sim/emu"
	"github.com/sarchlab/p5sim/insts"
	"github.com/sarchlab/p5sim/loader"
)

// DemoMemory is the memory preset used when InitDemoMemory is set.
var DemoMemory = map[int32]int32{0: 7, 4: 0, 8: 0, 12: 0}

// SimConfig holds simulation settings.
type SimConfig struct {
	// PrintTrace enables the per-cycle pipeline trace. Default: true.
	PrintTrace bool `json:"print_trace"`

	// InitDemoMemory presets DemoMemory before any other memory source.
	// Default: true.
	InitDemoMemory bool `json:"init_demo_memory"`

	// MaxCycles stops the run after this many cycles. 0 means unlimited.
	MaxCycles uint64 `json:"max_cycles"`

	// InitialRegisters presets registers 1-31.
	InitialRegisters map[uint8]int32 `json:"initial_registers,omitempty"`

	// InitialMemory presets memory words. It is applied after the demo
	// memory and the memory image.
	InitialMemory map[int32]int32 `json:"initial_memory,omitempty"`

	// MemoryImage is a CSV, JSON lines or Parquet file of address/value
	// rows. A relative path is resolved against the config file.
	MemoryImage string `json:"memory_image,omitempty"`

	// TraceCSV is where the per-cycle trace table is exported, if set.
	// A relative path is resolved against the config file.
	TraceCSV string `json:"trace_csv,omitempty"`
}

// DefaultSimConfig returns a SimConfig with default values.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		PrintTrace:     true,
		InitDemoMemory: true,
		MaxCycles:      0,
	}
}

// LoadConfig loads a SimConfig from a JSON file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sim config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse sim config: %w", err)
	}

	dir := filepath.Dir(path)
	config.MemoryImage = resolvePath(dir, config.MemoryImage)
	config.TraceCSV = resolvePath(dir, config.TraceCSV)

	return config, nil
}

// resolvePath makes a relative path relative to dir. Empty stays empty.
func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// SaveConfig writes a SimConfig to a JSON file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize sim config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sim config file: %w", err)
	}

	return nil
}

// Validate checks that the initial register assignments are writable.
func (c *SimConfig) Validate() error {
	for reg := range c.InitialRegisters {
		if reg == 0 {
			return fmt.Errorf("initial_registers: r0 is hard-wired to zero")
		}
		if reg >= insts.NumRegs {
			return fmt.Errorf("initial_registers: r%d out of range", reg)
		}
	}
	return nil
}

// Clone returns a deep copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	clone := *c

	if c.InitialRegisters != nil {
		clone.InitialRegisters = make(map[uint8]int32, len(c.InitialRegisters))
		for r, v := range c.InitialRegisters {
			clone.InitialRegisters[r] = v
		}
	}

	if c.InitialMemory != nil {
		clone.InitialMemory = make(map[int32]int32, len(c.InitialMemory))
		for a, v := range c.InitialMemory {
			clone.InitialMemory[a] = v
		}
	}

	return &clone
}

// Apply validates the config and writes its initial state into regFile and
// memory.
func (c *SimConfig) Apply(regFile *emu.RegFile, memory *emu.Memory) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.InitDemoMemory {
		memory.Load(DemoMemory)
	}

	if c.MemoryImage != "" {
		image, err := loader.LoadMemoryImage(c.MemoryImage)
		if err != nil {
			return err
		}
		memory.Load(image)
	}

	memory.Load(c.InitialMemory)

	for r, v := range c.InitialRegisters {
		regFile.WriteReg(r, v)
	}

	return nil
}
