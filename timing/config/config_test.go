package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/p5sim/emu"
	"github.com/sarchlab/p5sim/loader"
	"github.com/sarchlab/p5sim/timing/config"
)

var _ = Describe("SimConfig", func() {
	Describe("Default Config", func() {
		It("should print the trace", func() {
			Expect(config.DefaultSimConfig().PrintTrace).To(BeTrue())
		})

		It("should preset the demo memory", func() {
			Expect(config.DefaultSimConfig().InitDemoMemory).To(BeTrue())
		})

		It("should not limit cycles", func() {
			Expect(config.DefaultSimConfig().MaxCycles).To(BeZero())
		})
	})

	Describe("Clone", func() {
		It("should create independent copy", func() {
			original := config.DefaultSimConfig()
			original.InitialRegisters = map[uint8]int32{1: 5}
			original.InitialMemory = map[int32]int32{8: 3}

			clone := original.Clone()
			clone.MaxCycles = 100
			clone.InitialRegisters[1] = 6
			clone.InitialMemory[8] = 4

			Expect(original.MaxCycles).To(BeZero())
			Expect(original.InitialRegisters[1]).To(Equal(int32(5)))
			Expect(original.InitialMemory[8]).To(Equal(int32(3)))
			Expect(clone.InitialRegisters[1]).To(Equal(int32(6)))
		})
	})

	Describe("Validate", func() {
		It("should accept registers 1 to 31", func() {
			c := config.DefaultSimConfig()
			c.InitialRegisters = map[uint8]int32{1: 1, 31: 31}
			Expect(c.Validate()).To(Succeed())
		})

		It("should reject r0", func() {
			c := config.DefaultSimConfig()
			c.InitialRegisters = map[uint8]int32{0: 1}
			Expect(c.Validate()).To(MatchError(ContainSubstring("r0")))
		})

		It("should reject out of range registers", func() {
			c := config.DefaultSimConfig()
			c.InitialRegisters = map[uint8]int32{32: 1}
			Expect(c.Validate()).To(MatchError(ContainSubstring("r32")))
		})
	})

	Describe("Apply", func() {
		var (
			regFile *emu.RegFile
			memory  *emu.Memory
		)

		BeforeEach(func() {
			regFile = &emu.RegFile{}
			memory = emu.NewMemory()
		})

		It("should preset the demo memory", func() {
			Expect(config.DefaultSimConfig().Apply(regFile, memory)).To(Succeed())

			Expect(memory.Snapshot()).To(Equal(map[int32]int32{0: 7, 4: 0, 8: 0, 12: 0}))
		})

		It("should leave memory empty without the demo preset", func() {
			c := config.DefaultSimConfig()
			c.InitDemoMemory = false

			Expect(c.Apply(regFile, memory)).To(Succeed())
			Expect(memory.Len()).To(BeZero())
		})

		It("should layer demo memory, image and initial memory", func() {
			dir := GinkgoT().TempDir()
			image := filepath.Join(dir, "image.csv")
			Expect(loader.SaveMemoryImage(image, map[int32]int32{0: 1, 16: 2})).To(Succeed())

			c := config.DefaultSimConfig()
			c.MemoryImage = image
			c.InitialMemory = map[int32]int32{16: 3}
			c.InitialRegisters = map[uint8]int32{5: -1}

			Expect(c.Apply(regFile, memory)).To(Succeed())

			Expect(memory.Read(0)).To(Equal(int32(1)))
			Expect(memory.Read(4)).To(Equal(int32(0)))
			Expect(memory.Read(16)).To(Equal(int32(3)))
			Expect(regFile.ReadReg(5)).To(Equal(int32(-1)))
		})

		It("should fail on a missing image", func() {
			c := config.DefaultSimConfig()
			c.MemoryImage = "/nonexistent/image.csv"

			Expect(c.Apply(regFile, memory)).NotTo(Succeed())
		})

		It("should fail validation before touching state", func() {
			c := config.DefaultSimConfig()
			c.InitialRegisters = map[uint8]int32{0: 9}

			Expect(c.Apply(regFile, memory)).NotTo(Succeed())
			Expect(memory.Len()).To(BeZero())
		})
	})

	Describe("File Operations", func() {
		var tempDir string

		BeforeEach(func() {
			var err error
			tempDir, err = os.MkdirTemp("", "config-test")
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = os.RemoveAll(tempDir)
		})

		It("should save and load config", func() {
			original := config.DefaultSimConfig()
			original.PrintTrace = false
			original.MaxCycles = 500
			original.InitialRegisters = map[uint8]int32{3: 42}
			original.InitialMemory = map[int32]int32{-4: 9}

			path := filepath.Join(tempDir, "sim.json")
			Expect(original.SaveConfig(path)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(original))
		})

		It("should keep defaults for missing fields", func() {
			path := filepath.Join(tempDir, "sim.json")
			Expect(os.WriteFile(path, []byte(`{"max_cycles": 7}`), 0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.MaxCycles).To(Equal(uint64(7)))
			Expect(loaded.PrintTrace).To(BeTrue())
			Expect(loaded.InitDemoMemory).To(BeTrue())
		})

		It("should resolve a relative memory image against the config", func() {
			path := filepath.Join(tempDir, "sim.json")
			Expect(os.WriteFile(path, []byte(`{"memory_image": "mem.csv"}`), 0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.MemoryImage).To(Equal(filepath.Join(tempDir, "mem.csv")))
		})

		It("should resolve a relative trace CSV against the config", func() {
			path := filepath.Join(tempDir, "sim.json")
			content := `{"trace_csv": "out/trace.csv", "memory_image": "/abs/mem.csv"}`
			Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())

			loaded, err := config.LoadConfig(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.TraceCSV).To(Equal(filepath.Join(tempDir, "out", "trace.csv")))
			Expect(loaded.MemoryImage).To(Equal("/abs/mem.csv"))
		})

		It("should return error for non-existent file", func() {
			_, err := config.LoadConfig("/nonexistent/path/sim.json")
			Expect(err).To(HaveOccurred())
		})

		It("should return error for invalid JSON", func() {
			path := filepath.Join(tempDir, "invalid.json")
			err := os.WriteFile(path, []byte("not valid json"), 0644)
			Expect(err).NotTo(HaveOccurred())

			_, err = config.LoadConfig(path)
			Expect(err).To(HaveOccurred())
		})
	})
})
