package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/p5sim/insts"
	"github.com/sarchlab/p5sim/timing/pipeline"
)

func addInst(rd, rs, rt uint8) insts.Instruction {
	return insts.Instruction{Op: insts.OpADD, Rd: rd, Rs: rs, Rt: rt}
}

func lwInst(rt, rs uint8, imm int32) insts.Instruction {
	return insts.Instruction{Op: insts.OpLW, Rt: rt, Rs: rs, Imm: imm}
}

func swInst(rt, rs uint8, imm int32) insts.Instruction {
	return insts.Instruction{Op: insts.OpSW, Rt: rt, Rs: rs, Imm: imm}
}

func beqInst(rs, rt uint8, imm int32) insts.Instruction {
	return insts.Instruction{Op: insts.OpBEQ, Rs: rs, Rt: rt, Imm: imm}
}

var _ = Describe("HazardUnit", func() {
	var hazardUnit *pipeline.HazardUnit

	BeforeEach(func() {
		hazardUnit = pipeline.NewHazardUnit()
	})

	Describe("DetectForwarding", func() {
		var idex *pipeline.IDEXRegister
		var exmem *pipeline.EXMEMRegister
		var memwb *pipeline.MEMWBRegister

		BeforeEach(func() {
			idex = &pipeline.IDEXRegister{Valid: true, Inst: addInst(3, 1, 2)}
			exmem = &pipeline.EXMEMRegister{}
			memwb = &pipeline.MEMWBRegister{}
		})

		Context("when no forwarding is needed", func() {
			It("should return ForwardNone for both operands", func() {
				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs).To(Equal(pipeline.ForwardNone))
				Expect(result.ForwardRt).To(Equal(pipeline.ForwardNone))
				Expect(result.Any()).To(BeFalse())
			})

			It("should ignore an invalid ID/EX register", func() {
				idex.Valid = false
				exmem.Valid = true
				exmem.Inst = addInst(1, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.Any()).To(BeFalse())
			})

			It("should ignore writers of other registers", func() {
				exmem.Valid = true
				exmem.Inst = addInst(5, 0, 0)
				memwb.Valid = true
				memwb.Inst = addInst(6, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.Any()).To(BeFalse())
			})
		})

		Context("when forwarding from EX/MEM is needed", func() {
			It("should forward Rs from EX/MEM", func() {
				exmem.Valid = true
				exmem.Inst = addInst(1, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs).To(Equal(pipeline.ForwardFromEXMEM))
				Expect(result.ForwardRt).To(Equal(pipeline.ForwardNone))
			})

			It("should forward Rt from EX/MEM", func() {
				exmem.Valid = true
				exmem.Inst = addInst(2, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs).To(Equal(pipeline.ForwardNone))
				Expect(result.ForwardRt).To(Equal(pipeline.ForwardFromEXMEM))
			})

			It("should forward both operands from EX/MEM", func() {
				idex.Inst = addInst(4, 3, 3)
				exmem.Valid = true
				exmem.Inst = addInst(3, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs).To(Equal(pipeline.ForwardFromEXMEM))
				Expect(result.ForwardRt).To(Equal(pipeline.ForwardFromEXMEM))
			})

			It("should not forward a load from EX/MEM", func() {
				exmem.Valid = true
				exmem.Inst = lwInst(1, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs).To(Equal(pipeline.ForwardNone))
			})

			It("should not forward from a store or branch", func() {
				exmem.Valid = true
				exmem.Inst = swInst(1, 1, 0)

				Expect(hazardUnit.DetectForwarding(idex, exmem, memwb).Any()).To(BeFalse())

				exmem.Inst = beqInst(1, 2, 0)

				Expect(hazardUnit.DetectForwarding(idex, exmem, memwb).Any()).To(BeFalse())
			})
		})

		Context("when forwarding from MEM/WB is needed", func() {
			It("should forward Rs from MEM/WB", func() {
				memwb.Valid = true
				memwb.Inst = addInst(1, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs).To(Equal(pipeline.ForwardFromMEMWB))
				Expect(result.ForwardRt).To(Equal(pipeline.ForwardNone))
			})

			It("should forward completed load data from MEM/WB", func() {
				memwb.Valid = true
				memwb.Inst = lwInst(2, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRt).To(Equal(pipeline.ForwardFromMEMWB))
			})
		})

		Context("when both EX/MEM and MEM/WB write the register", func() {
			It("should prefer EX/MEM", func() {
				exmem.Valid = true
				exmem.Inst = addInst(1, 0, 0)
				memwb.Valid = true
				memwb.Inst = addInst(1, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs).To(Equal(pipeline.ForwardFromEXMEM))
			})

			It("should fall back to MEM/WB when EX/MEM holds a load", func() {
				exmem.Valid = true
				exmem.Inst = lwInst(1, 0, 0)
				memwb.Valid = true
				memwb.Inst = addInst(1, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRs).To(Equal(pipeline.ForwardFromMEMWB))
			})
		})

		Context("with register 0", func() {
			It("should never forward r0", func() {
				idex.Inst = addInst(3, 0, 0)
				exmem.Valid = true
				exmem.Inst = addInst(0, 1, 1)
				memwb.Valid = true
				memwb.Inst = lwInst(0, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.Any()).To(BeFalse())
			})
		})

		Context("with operand usage", func() {
			It("should not forward into the Rt field of a load", func() {
				idex.Inst = lwInst(2, 1, 0)
				exmem.Valid = true
				exmem.Inst = addInst(2, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRt).To(Equal(pipeline.ForwardNone))
			})

			It("should forward store data through Rt", func() {
				idex.Inst = swInst(2, 1, 0)
				exmem.Valid = true
				exmem.Inst = addInst(2, 0, 0)

				result := hazardUnit.DetectForwarding(idex, exmem, memwb)

				Expect(result.ForwardRt).To(Equal(pipeline.ForwardFromEXMEM))
			})

			It("should not forward into a nop", func() {
				idex.Inst = insts.Nop(0)
				exmem.Valid = true
				exmem.Inst = addInst(0, 0, 0)
				memwb.Valid = true
				memwb.Inst = addInst(0, 0, 0)

				Expect(hazardUnit.DetectForwarding(idex, exmem, memwb).Any()).To(BeFalse())
			})
		})
	})

	Describe("GetForwardedValue", func() {
		var exmem *pipeline.EXMEMRegister
		var memwb *pipeline.MEMWBRegister

		BeforeEach(func() {
			exmem = &pipeline.EXMEMRegister{Valid: true, Inst: addInst(1, 0, 0), ALUResult: 100}
			memwb = &pipeline.MEMWBRegister{Valid: true, Inst: addInst(1, 0, 0), ALUResult: 200}
		})

		It("should return the latched value for ForwardNone", func() {
			Expect(hazardUnit.GetForwardedValue(pipeline.ForwardNone, 7, exmem, memwb)).
				To(Equal(int32(7)))
		})

		It("should return the EX/MEM ALU result", func() {
			Expect(hazardUnit.GetForwardedValue(pipeline.ForwardFromEXMEM, 7, exmem, memwb)).
				To(Equal(int32(100)))
		})

		It("should return the MEM/WB ALU result", func() {
			Expect(hazardUnit.GetForwardedValue(pipeline.ForwardFromMEMWB, 7, exmem, memwb)).
				To(Equal(int32(200)))
		})

		It("should return the MEM/WB load data for a load", func() {
			memwb.Inst = lwInst(1, 0, 0)
			memwb.ALUResult = 12
			memwb.MemData = 300

			Expect(hazardUnit.GetForwardedValue(pipeline.ForwardFromMEMWB, 7, exmem, memwb)).
				To(Equal(int32(300)))
		})
	})

	Describe("DetectLoadUseHazard", func() {
		var idex *pipeline.IDEXRegister
		var ifid *pipeline.IFIDRegister

		BeforeEach(func() {
			idex = &pipeline.IDEXRegister{Valid: true, Inst: lwInst(2, 0, 0)}
			ifid = &pipeline.IFIDRegister{Valid: true}
		})

		It("should detect a use as Rs", func() {
			ifid.Inst = addInst(3, 2, 4)
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeTrue())
		})

		It("should detect a use as Rt", func() {
			ifid.Inst = addInst(3, 4, 2)
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeTrue())
		})

		It("should detect store data and load base uses", func() {
			ifid.Inst = swInst(2, 0, 8)
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeTrue())

			ifid.Inst = lwInst(5, 2, 0)
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeTrue())
		})

		It("should detect a branch comparing the loaded register", func() {
			ifid.Inst = beqInst(2, 0, 1)
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeTrue())
		})

		It("should not trigger when the next instruction only overwrites it", func() {
			ifid.Inst = lwInst(2, 0, 4)
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeFalse())
		})

		It("should not trigger for independent instructions", func() {
			ifid.Inst = addInst(3, 4, 5)
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeFalse())
		})

		It("should not trigger for a load into r0", func() {
			idex.Inst = lwInst(0, 0, 0)
			ifid.Inst = addInst(3, 0, 0)
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeFalse())
		})

		It("should not trigger when ID/EX is not a load", func() {
			idex.Inst = addInst(2, 0, 0)
			ifid.Inst = addInst(3, 2, 2)
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeFalse())
		})

		It("should not trigger on bubbles", func() {
			ifid.Inst = addInst(3, 2, 2)

			ifid.Valid = false
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeFalse())

			ifid.Valid = true
			idex.Valid = false
			Expect(hazardUnit.DetectLoadUseHazard(idex, ifid)).To(BeFalse())
		})
	})

	Describe("ComputeStalls", func() {
		It("should return no signals when there is no hazard", func() {
			Expect(hazardUnit.ComputeStalls(false, false)).To(Equal(pipeline.StallResult{}))
		})

		It("should stall IF and insert a bubble for a load-use hazard", func() {
			result := hazardUnit.ComputeStalls(true, false)

			Expect(result.StallIF).To(BeTrue())
			Expect(result.InsertBubbleEX).To(BeTrue())
			Expect(result.FlushIF).To(BeFalse())
			Expect(result.FlushID).To(BeFalse())
		})

		It("should flush IF and ID for a taken branch", func() {
			result := hazardUnit.ComputeStalls(false, true)

			Expect(result.StallIF).To(BeFalse())
			Expect(result.FlushIF).To(BeTrue())
			Expect(result.FlushID).To(BeTrue())
		})
	})

	Describe("ForwardSource", func() {
		It("should have readable names", func() {
			Expect(pipeline.ForwardNone.String()).To(Equal("none"))
			Expect(pipeline.ForwardFromEXMEM.String()).To(Equal("EX/MEM"))
			Expect(pipeline.ForwardFromMEMWB.String()).To(Equal("MEM/WB"))
		})
	})
})
