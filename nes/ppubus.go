package nes

/*
关于PPU地址分配

0x0000-0x0fff 图样表0
0x1000-0x1fff 图样表1
两个pattern Table各4kb, 来自卡带

0x2000-0x23ff 名称表0
0x2400-0x27ff 名称表1
0x2800-0x2bff 名称表2
0x2c00-0x2fff 名称表3
物理上只有2kb, 由卡带的镜像模式决定4个逻辑表对应哪一个 (四屏模式除外)
0x3000-0x3eff 是0x2000-0x2eff的镜像

0x3f00-0x3f1f 调色板, 前面16字节背景使用，后面16字节精灵使用
0x3f20-0x3fff 0x3f00-0x3f1f镜像
*/

// OAMEntry is one of the 64 sprites held in object attribute memory.
type OAMEntry struct {
	Y    byte
	Tile byte
	Attr byte // 76543210: 垂直翻转, 水平翻转, 优先级(1在背景后面), ---, 调色板
	X    byte
}

func (e OAMEntry) Palette() byte  { return e.Attr & 0x03 }
func (e OAMEntry) BehindBG() bool { return e.Attr&0x20 != 0 }
func (e OAMEntry) FlipX() bool    { return e.Attr&0x40 != 0 }
func (e OAMEntry) FlipY() bool    { return e.Attr&0x80 != 0 }

// PPUBus owns the memory private to the PPU and the register file the CPU
// sees at $2000-$2007.
type PPUBus struct {
	nameTables [4][0x400]byte
	palette    [32]byte
	oam        [256]byte // sprites内存，每4byte一个

	Ctrl    Ctrl
	Mask    Mask
	Status  Status
	OAMAddr byte // 0x2003

	// internal寄存器
	V     Loopy // 当前VRAM地址 15bit
	T     Loopy // 临时VRAM地址 15bit
	FineX byte  // X Scroll 3bit
	latch bool  // 第一次还是第二次写的标记

	dataBuffer byte // $2007 读缓冲

	// VBlank 期间打开 NMI 开关, 需要马上触发一次
	nmiOnEnable bool
}

func (pb *PPUBus) reset() {
	*pb = PPUBus{}
}

// oamEntry returns sprite i (0-63).
func (pb *PPUBus) oamEntry(i int) OAMEntry {
	b := pb.oam[i*4 : i*4+4]
	return OAMEntry{Y: b[0], Tile: b[1], Attr: b[2], X: b[3]}
}

// transferToOAM 给 DMA 使用
func (pb *PPUBus) transferToOAM(offset byte, value byte) {
	pb.oam[pb.OAMAddr+offset] = value
}

// ppuRead reads from the PPU address space.
func (pb *PPUBus) ppuRead(cart *Cartridge, addr uint16) byte {
	// 高于0x3fff的会被镜像，所以需要对0x4000取余
	addr %= 0x4000
	switch {
	case addr < 0x2000:
		if cart == nil {
			return 0
		}
		return cart.ppuRead(addr)
	case addr < 0x3F00:
		t, off := pb.mirroring(cart).nametable(addr)
		return pb.nameTables[t][off]
	default:
		v := pb.palette[paletteIndex(addr)]
		if pb.Mask.Has(MaskGreyscale) {
			v &= 0x30
		}
		return v
	}
}

func (pb *PPUBus) ppuWrite(cart *Cartridge, addr uint16, value byte) {
	addr %= 0x4000
	switch {
	case addr < 0x2000:
		if cart != nil {
			cart.ppuWrite(addr, value)
		}
	case addr < 0x3F00:
		t, off := pb.mirroring(cart).nametable(addr)
		pb.nameTables[t][off] = value
	default:
		pb.palette[paletteIndex(addr)] = value & 0x3F
	}
}

func (pb *PPUBus) mirroring(cart *Cartridge) Mirroring {
	if cart == nil {
		return MirrorHorizontal
	}
	return cart.Mirroring()
}

// $3F10/$3F14/$3F18/$3F1C 是 $3F00/$3F04/$3F08/$3F0C 的镜像
func paletteIndex(addr uint16) uint16 {
	addr %= 32
	if addr >= 16 && addr%4 == 0 {
		addr -= 16
	}
	return addr
}

// https://wiki.nesdev.org/w/index.php?title=PPU_registers
// cpu读ppu寄存器, addr 已经是 0x2000-0x2007
func (pb *PPUBus) readRegister(cart *Cartridge, addr uint16) byte {
	switch addr {
	case 0x2002:
		// 低5位是上次写入数据的残留, 用 $2007 的缓冲代替
		v := byte(pb.Status)&0xE0 | pb.dataBuffer&0x1F
		pb.Status.Set(StatusVBlank, false)
		pb.latch = false
		return v
	case 0x2004:
		data := pb.oam[pb.OAMAddr]
		if pb.OAMAddr&0x03 == 0x02 {
			data &= 0xE3
		}
		return data
	case 0x2007:
		addr := uint16(pb.V) & 0x3FFF
		value := pb.ppuRead(cart, addr)
		if addr < 0x3F00 {
			value, pb.dataBuffer = pb.dataBuffer, value
		} else {
			// 调色板直接返回, 缓冲填入下面的 nametable
			pb.dataBuffer = pb.ppuRead(cart, addr-0x1000)
		}
		pb.V = Loopy((uint16(pb.V) + pb.Ctrl.IncrementAmount()) & 0x7FFF)
		return value
	}
	return 0
}

// peekRegister 和 readRegister 一样但没有副作用
func (pb *PPUBus) peekRegister(addr uint16) byte {
	switch addr {
	case 0x2002:
		return byte(pb.Status)&0xE0 | pb.dataBuffer&0x1F
	case 0x2004:
		return pb.oam[pb.OAMAddr]
	case 0x2007:
		return pb.dataBuffer
	}
	return 0
}

// cpu修改ppu寄存器
func (pb *PPUBus) writeRegister(cart *Cartridge, addr uint16, value byte) {
	switch addr {
	case 0x2000:
		// PPUCTRL
		prev := pb.Ctrl
		pb.Ctrl = Ctrl(value)
		// t: ....BA.. ........ = d: ......BA
		pb.T.SetNametableX(uint16(value))
		pb.T.SetNametableY(uint16(value >> 1))
		if !prev.Has(CtrlEnableNMI) && pb.Ctrl.Has(CtrlEnableNMI) && pb.Status.Has(StatusVBlank) {
			pb.nmiOnEnable = true
		}
	case 0x2001:
		pb.Mask = Mask(value)
	case 0x2003:
		pb.OAMAddr = value
	case 0x2004:
		pb.oam[pb.OAMAddr] = value
		pb.OAMAddr++
	case 0x2005:
		// $2005 屏幕滚动 双写
		if !pb.latch {
			// t: ....... ...ABCDE <- d: ABCDE...
			// x:              FGH <- d: .....FGH
			pb.T.SetCoarseX(uint16(value >> 3))
			pb.FineX = value & 0x07
		} else {
			// t: .CBA..HG FED..... = d: HGFEDCBA
			pb.T.SetFineY(uint16(value & 0x07))
			pb.T.SetCoarseY(uint16(value >> 3))
		}
		pb.latch = !pb.latch
	case 0x2006:
		// $2006 显存指针 双写
		if !pb.latch {
			// t: .FEDCBA ........ = d: ..FEDCBA
			// t: X...... ........ = 0
			pb.T = Loopy(uint16(pb.T)&0x00FF | uint16(value&0x3F)<<8)
		} else {
			// t: ....... ABCDEFGH <- d: ABCDEFGH
			// v: <...all bits...> <- t: <...all bits...>
			pb.T = Loopy(uint16(pb.T)&0xFF00 | uint16(value))
			pb.V = pb.T
		}
		pb.latch = !pb.latch
	case 0x2007:
		pb.ppuWrite(cart, uint16(pb.V)&0x3FFF, value)
		pb.V = Loopy((uint16(pb.V) + pb.Ctrl.IncrementAmount()) & 0x7FFF)
	}
}
