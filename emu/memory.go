package emu

import "sort"

// Memory is a sparse word-granular memory. Addresses are byte addresses but
// every address holds one full word; there is no alignment check.
// Addresses that were never written read as 0.
type Memory struct {
	words map[int32]int32
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{words: make(map[int32]int32)}
}

// Read returns the word at addr, or 0 if it was never written.
func (m *Memory) Read(addr int32) int32 {
	return m.words[addr]
}

// Write stores a word at addr.
func (m *Memory) Write(addr int32, value int32) {
	m.words[addr] = value
}

// Contains reports whether addr has ever been written.
func (m *Memory) Contains(addr int32) bool {
	_, ok := m.words[addr]
	return ok
}

// Len returns the number of written addresses.
func (m *Memory) Len() int {
	return len(m.words)
}

// Addresses returns all written addresses in ascending order.
func (m *Memory) Addresses() []int32 {
	addrs := make([]int32, 0, len(m.words))
	for a := range m.words {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Snapshot returns a copy of the written words.
func (m *Memory) Snapshot() map[int32]int32 {
	out := make(map[int32]int32, len(m.words))
	for a, v := range m.words {
		out[a] = v
	}
	return out
}

// Load writes every entry of image into memory.
func (m *Memory) Load(image map[int32]int32) {
	for a, v := range image {
		m.words[a] = v
	}
}

// Reset clears all memory.
func (m *Memory) Reset() {
	m.words = make(map[int32]int32)
}
