package cpu

import "testing"

func TestLoadStoreInstructions(t *testing.T) {
	tests := []struct {
		name    string
		program []uint8
		setup   func(*CPU, *MockMemory)
		check   func(*testing.T, *CPU, *MockMemory)
	}{
		{
			name:    "LDA immediate",
			program: []uint8{0xA9, 0x42},
			check: func(t *testing.T, c *CPU, m *MockMemory) {
				if c.A != 0x42 {
					t.Errorf("A = $%02X, want $42", c.A)
				}
				if c.Z || c.N {
					t.Error("Z/N should be clear")
				}
			},
		},
		{
			name:    "LDA zero sets Z",
			program: []uint8{0xA9, 0x00},
			check: func(t *testing.T, c *CPU, m *MockMemory) {
				if !c.Z {
					t.Error("Z should be set")
				}
			},
		},
		{
			name:    "LDA negative sets N",
			program: []uint8{0xA9, 0x80},
			check: func(t *testing.T, c *CPU, m *MockMemory) {
				if !c.N {
					t.Error("N should be set")
				}
			},
		},
		{
			name:    "LDX zero page",
			program: []uint8{0xA6, 0x10},
			setup:   func(c *CPU, m *MockMemory) { m.data[0x10] = 0x33 },
			check: func(t *testing.T, c *CPU, m *MockMemory) {
				if c.X != 0x33 {
					t.Errorf("X = $%02X, want $33", c.X)
				}
			},
		},
		{
			name:    "LDY absolute",
			program: []uint8{0xAC, 0x00, 0x20},
			setup:   func(c *CPU, m *MockMemory) { m.data[0x2000] = 0x77 },
			check: func(t *testing.T, c *CPU, m *MockMemory) {
				if c.Y != 0x77 {
					t.Errorf("Y = $%02X, want $77", c.Y)
				}
			},
		},
		{
			name:    "STA absolute",
			program: []uint8{0x8D, 0x00, 0x02},
			setup:   func(c *CPU, m *MockMemory) { c.A = 0x99 },
			check: func(t *testing.T, c *CPU, m *MockMemory) {
				if m.data[0x0200] != 0x99 {
					t.Errorf("$0200 = $%02X, want $99", m.data[0x0200])
				}
			},
		},
		{
			name:    "LDA indexed indirect",
			program: []uint8{0xA1, 0x20},
			setup: func(c *CPU, m *MockMemory) {
				c.X = 0x04
				m.SetBytes(0x24, 0x00, 0x03) // pointer -> $0300
				m.data[0x0300] = 0x5A
			},
			check: func(t *testing.T, c *CPU, m *MockMemory) {
				if c.A != 0x5A {
					t.Errorf("A = $%02X, want $5A", c.A)
				}
			},
		},
		{
			name:    "LDA indirect indexed",
			program: []uint8{0xB1, 0x20},
			setup: func(c *CPU, m *MockMemory) {
				c.Y = 0x10
				m.SetBytes(0x20, 0x00, 0x03) // base $0300 + Y
				m.data[0x0310] = 0xA5
			},
			check: func(t *testing.T, c *CPU, m *MockMemory) {
				if c.A != 0xA5 {
					t.Errorf("A = $%02X, want $A5", c.A)
				}
			},
		},
		{
			name:    "zero page X wraps",
			program: []uint8{0xB5, 0xF0},
			setup: func(c *CPU, m *MockMemory) {
				c.X = 0x20
				m.data[0x10] = 0x7B // $F0 + $20 wraps to $10
			},
			check: func(t *testing.T, c *CPU, m *MockMemory) {
				if c.A != 0x7B {
					t.Errorf("A = $%02X, want $7B", c.A)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, mem := newTestCPU(tt.program...)
			if tt.setup != nil {
				tt.setup(cpu, mem)
			}
			cpu.Step()
			tt.check(t, cpu, mem)
		})
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name          string
		a             uint8
		carry         bool
		program       []uint8
		wantA         uint8
		wantC, wantV  bool
		wantZ, wantN  bool
	}{
		{"ADC simple", 0x10, false, []uint8{0x69, 0x20}, 0x30, false, false, false, false},
		{"ADC with carry in", 0x10, true, []uint8{0x69, 0x20}, 0x31, false, false, false, false},
		{"ADC carry out", 0xFF, false, []uint8{0x69, 0x01}, 0x00, true, false, true, false},
		{"ADC signed overflow", 0x7F, false, []uint8{0x69, 0x01}, 0x80, false, true, false, true},
		{"SBC simple", 0x50, true, []uint8{0xE9, 0x20}, 0x30, true, false, false, false},
		{"SBC borrow", 0x20, true, []uint8{0xE9, 0x30}, 0xF0, false, false, false, true},
		{"SBC signed overflow", 0x80, true, []uint8{0xE9, 0x01}, 0x7F, true, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(tt.program...)
			cpu.A = tt.a
			cpu.C = tt.carry
			cpu.Step()
			if cpu.A != tt.wantA {
				t.Errorf("A = $%02X, want $%02X", cpu.A, tt.wantA)
			}
			if cpu.C != tt.wantC || cpu.V != tt.wantV || cpu.Z != tt.wantZ || cpu.N != tt.wantN {
				t.Errorf("flags C=%t V=%t Z=%t N=%t, want C=%t V=%t Z=%t N=%t",
					cpu.C, cpu.V, cpu.Z, cpu.N, tt.wantC, tt.wantV, tt.wantZ, tt.wantN)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name         string
		a, operand   uint8
		wantC, wantZ bool
	}{
		{"equal", 0x42, 0x42, true, true},
		{"greater", 0x50, 0x42, true, false},
		{"less", 0x30, 0x42, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cpu, _ := newTestCPU(0xC9, tt.operand)
			cpu.A = tt.a
			cpu.Step()
			if cpu.C != tt.wantC || cpu.Z != tt.wantZ {
				t.Errorf("C=%t Z=%t, want C=%t Z=%t", cpu.C, cpu.Z, tt.wantC, tt.wantZ)
			}
		})
	}
}

func TestShiftsAndRotates(t *testing.T) {
	// ASL A with bit 7 set
	cpu, _ := newTestCPU(0x0A)
	cpu.A = 0x81
	cpu.Step()
	if cpu.A != 0x02 || !cpu.C {
		t.Errorf("ASL: A=$%02X C=%t, want $02/true", cpu.A, cpu.C)
	}

	// ROR A pulls carry into bit 7
	cpu, _ = newTestCPU(0x6A)
	cpu.A = 0x02
	cpu.C = true
	cpu.Step()
	if cpu.A != 0x81 || cpu.C {
		t.Errorf("ROR: A=$%02X C=%t, want $81/false", cpu.A, cpu.C)
	}

	// LSR memory
	cpu, mem := newTestCPU(0x46, 0x10)
	mem.data[0x10] = 0x03
	cpu.Step()
	if mem.data[0x10] != 0x01 || !cpu.C {
		t.Errorf("LSR: mem=$%02X C=%t, want $01/true", mem.data[0x10], cpu.C)
	}

	// ROL memory carries out of bit 7 and pulls carry into bit 0
	cpu, mem = newTestCPU(0x26, 0x10)
	mem.data[0x10] = 0x80
	cpu.C = true
	cpu.Step()
	if mem.data[0x10] != 0x01 || !cpu.C {
		t.Errorf("ROL: mem=$%02X C=%t, want $01/true", mem.data[0x10], cpu.C)
	}
}

func TestBIT(t *testing.T) {
	cpu, mem := newTestCPU(0x24, 0x10)
	mem.data[0x10] = 0xC0
	cpu.A = 0x0F
	cpu.Step()
	if !cpu.N || !cpu.V {
		t.Error("BIT should copy bits 7/6 into N/V")
	}
	if !cpu.Z {
		t.Error("BIT should set Z when A AND operand is zero")
	}
}

func TestJSRAndRTS(t *testing.T) {
	cpu, mem := newTestCPU(0x20, 0x00, 0x90) // JSR $9000
	mem.SetBytes(0x9000, 0x60)               // RTS
	cpu.Step()
	if cpu.PC != 0x9000 {
		t.Fatalf("PC after JSR = $%04X, want $9000", cpu.PC)
	}
	cpu.Step()
	if cpu.PC != 0x8003 {
		t.Errorf("PC after RTS = $%04X, want $8003", cpu.PC)
	}
}

func TestJMPIndirectPageBug(t *testing.T) {
	cpu, mem := newTestCPU(0x6C, 0xFF, 0x02) // JMP ($02FF)
	mem.data[0x02FF] = 0x34
	mem.data[0x0200] = 0x12 // high byte wraps to start of the page
	mem.data[0x0300] = 0xFF // must NOT be used
	cpu.Step()
	if cpu.PC != 0x1234 {
		t.Errorf("PC = $%04X, want $1234 (page-wrap bug)", cpu.PC)
	}
}

func TestBranches(t *testing.T) {
	// BNE taken jumps forward
	cpu, _ := newTestCPU(0xD0, 0x05)
	cpu.Z = false
	cpu.Step()
	if cpu.PC != 0x8007 {
		t.Errorf("BNE taken: PC = $%04X, want $8007", cpu.PC)
	}

	// BNE not taken falls through
	cpu, _ = newTestCPU(0xD0, 0x05)
	cpu.Z = true
	cpu.Step()
	if cpu.PC != 0x8002 {
		t.Errorf("BNE not taken: PC = $%04X, want $8002", cpu.PC)
	}

	// Negative offset
	cpu, _ = newTestCPU(0xF0, 0xFC) // BEQ -4
	cpu.Z = true
	cpu.Step()
	if cpu.PC != 0x7FFE {
		t.Errorf("BEQ backward: PC = $%04X, want $7FFE", cpu.PC)
	}
}

func TestUnofficialLAXAndSAX(t *testing.T) {
	cpu, mem := newTestCPU(0xA7, 0x10) // LAX zp
	mem.data[0x10] = 0x3C
	cpu.Step()
	if cpu.A != 0x3C || cpu.X != 0x3C {
		t.Errorf("LAX: A=$%02X X=$%02X, want both $3C", cpu.A, cpu.X)
	}

	cpu, mem = newTestCPU(0x87, 0x20) // SAX zp
	cpu.A = 0xF0
	cpu.X = 0x3C
	cpu.Step()
	if mem.data[0x20] != 0x30 {
		t.Errorf("SAX: mem=$%02X, want $30", mem.data[0x20])
	}
}

func TestUnofficialDCP(t *testing.T) {
	cpu, mem := newTestCPU(0xC7, 0x10)
	mem.data[0x10] = 0x43
	cpu.A = 0x42
	cpu.Step()
	if mem.data[0x10] != 0x42 {
		t.Errorf("DCP: mem=$%02X, want $42", mem.data[0x10])
	}
	if !cpu.Z || !cpu.C {
		t.Error("DCP should compare A against decremented value")
	}
}
