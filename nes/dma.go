package nes

// OAM DMA: 写 $4014 把 $XX00-$XXFF 复制到 OAM
//
// 每个字节两个CPU周期, 偶数周期读, 奇数周期写. 开始时要对齐: 一个等待周期,
// 如果开始于偶数周期, 再多等一个. 256 字节共 513 或 514 个周期.
type dma struct {
	page         byte
	offset       byte
	data         byte
	transferring bool
	dummy        bool
}

func (d *dma) start(page byte) {
	d.page = page
	d.offset = 0
	d.transferring = true
	d.dummy = true
}

// DMAClock runs one CPU cycle of an OAM DMA transfer. cpuCycle is the number
// of CPU cycles since power on and selects the read or the write half.
func (b *Bus) DMAClock(cpuCycle uint64) {
	d := &b.dma
	if !d.transferring {
		return
	}

	if d.dummy {
		if cpuCycle%2 == 1 {
			d.dummy = false
		}
		return
	}

	if cpuCycle%2 == 0 {
		d.data = b.Read(uint16(d.page)<<8 | uint16(d.offset))
		return
	}

	b.PPU.transferToOAM(d.offset, d.data)
	d.offset++
	if d.offset == 0 {
		d.transferring = false
		d.dummy = true
	}
}

// DMATransferring is true while OAM DMA owns the bus.
func (b *Bus) DMATransferring() bool {
	return b.dma.transferring
}
