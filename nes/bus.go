package nes

/*
[$0000, $2000) cpu 内存{0-0x0800，[0x0800-0x1000, 0x1000-0x1800, 0x1800-0x2000]都是0-0x0800的镜像}
[$2000, $4000) PPU 寄存器, 每8字节镜像
$4014 OAM DMA
$4016/$4017 手柄
[$4000, $4020) 其余是 pAPU 寄存器, 由 CPU 直接处理
[$4020, $10000) 交给卡带 (扩展区域, SRAM, PRG-ROM), 卡带不处理的是 open bus
*/

// Bus is the system bus. It owns the CPU RAM, the cartridge, the PPU side
// memory and the joypads. The CPU and the PPU are handed the bus for the
// duration of a single clock and never keep it.
type Bus struct {
	RAM       [0x800]byte
	Cartridge *Cartridge
	PPU       PPUBus
	Pads      [2]Controller

	dma dma

	// DMC 取样时 CPU 暂停的周期数
	DMCStall byte
}

// Read a byte on behalf of the CPU.
func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return b.RAM[addr%0x0800]
	case addr < 0x4000:
		// 这边addr访问ppu寄存器，存在镜像，需要对8取余
		return b.PPU.readRegister(b.Cartridge, 0x2000+addr%8)
	case addr == 0x4016:
		return b.Pads[0].Read()
	case addr == 0x4017:
		return b.Pads[1].Read()
	}

	if b.Cartridge != nil {
		if v, ok := b.Cartridge.cpuRead(addr); ok {
			return v
		}
	}

	// open bus
	return 0
}

// Write a byte on behalf of the CPU.
func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		b.RAM[addr%0x0800] = value
		return
	case addr < 0x4000:
		b.PPU.writeRegister(b.Cartridge, 0x2000+addr%8, value)
		return
	case addr == 0x4014:
		b.dma.start(value)
		return
	case addr == 0x4016:
		// 给4016写,同时写两个手柄
		b.Pads[0].Write(value)
		b.Pads[1].Write(value)
		return
	}

	if b.Cartridge != nil {
		b.Cartridge.cpuWrite(addr, value)
	}
}

// Peek reads without side effects. Used by the trace and the debugger.
func (b *Bus) Peek(addr uint16) byte {
	switch {
	case addr < 0x2000:
		return b.RAM[addr%0x0800]
	case addr < 0x4000:
		return b.PPU.peekRegister(0x2000 + addr%8)
	case addr == 0x4016:
		return b.Pads[0].peek()
	case addr == 0x4017:
		return b.Pads[1].peek()
	}

	if b.Cartridge != nil {
		if v, ok := b.Cartridge.cpuRead(addr); ok {
			return v
		}
	}
	return 0
}

func (b *Bus) ppuRead(addr uint16) byte {
	return b.PPU.ppuRead(b.Cartridge, addr)
}

func (b *Bus) ppuWrite(addr uint16, value byte) {
	b.PPU.ppuWrite(b.Cartridge, addr, value)
}

// UpdateJoypad sets the button mask of controller 0 or 1.
func (b *Bus) UpdateJoypad(index int, mask byte) {
	b.Pads[index].SetButtons(mask)
}

// IRQActive reports the cartridge IRQ line.
func (b *Bus) IRQActive() bool {
	return b.Cartridge != nil && b.Cartridge.irqActive()
}

// Reset clears RAM, the PPU side memory and any pending DMA.
func (b *Bus) Reset() {
	b.RAM = [0x800]byte{}
	b.PPU.reset()
	b.dma = dma{}
	b.DMCStall = 0
	for i := range b.Pads {
		b.Pads[i] = Controller{}
	}
	if b.Cartridge != nil {
		b.Cartridge.Reset()
	}
}
