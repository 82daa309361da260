package nes

import (
	"fmt"

	"github.com/55utah/fc-simulator/curated"
)

/**
BANK是每个Mapper载入的单位

0: [$0000, $2000) cpu 内存
1: [$2000, $4000) PPU 寄存器
2: [$4000, $6000) pAPU寄存器以及扩展区域
3: [$6000, $8000) 存档用SRAM区
剩下的全是 程序代码区 PRG-ROM [$8000, $0x10000)

PPU 侧 [$0000, $2000) 是 pattern table, 来自卡带的 CHR-ROM/CHR-RAM
*/

type mapperKind byte

const (
	kindNROM  mapperKind = iota // 0
	kindMMC1                    // 1
	kindUxROM                   // 2
	kindCNROM                   // 3
	kindMMC3                    // 4
	kindAxROM                   // 7
	kindGxROM                   // 66
)

// Mapper is the closed set of supported cartridge circuits. Exactly one of
// the payload fields is set, selected by kind.
type Mapper struct {
	kind mapperKind

	nrom  *mapper0
	mmc1  *mapper1
	uxrom *mapper2
	cnrom *mapper3
	mmc3  *mapper4
	axrom *mapper7
	gxrom *mapper66
}

// newMapper 返回 mapper 以及它提供的 SRAM 大小
func newMapper(id byte, c *Cartridge) (Mapper, int, error) {
	var m Mapper
	var sram int

	switch id {
	case 0:
		m = Mapper{kind: kindNROM, nrom: &mapper0{}}
		sram = 0x2000
	case 1:
		m = Mapper{kind: kindMMC1, mmc1: &mapper1{}}
		sram = 0x2000
	case 2:
		m = Mapper{kind: kindUxROM, uxrom: &mapper2{}}
	case 3:
		m = Mapper{kind: kindCNROM, cnrom: &mapper3{}}
	case 4:
		m = Mapper{kind: kindMMC3, mmc3: &mapper4{}}
		sram = 0x2000
	case 7:
		m = Mapper{kind: kindAxROM, axrom: &mapper7{}}
	case 66:
		m = Mapper{kind: kindGxROM, gxrom: &mapper66{}}
	default:
		return Mapper{}, 0, curated.Errorf(UnsupportedMapper, id)
	}

	m.reset(c)
	return m, sram, nil
}

func (m Mapper) unknown() {
	panic(fmt.Sprintf("mapper: unknown kind %d", m.kind))
}

func (m Mapper) cpuRead(c *Cartridge, addr uint16) (byte, bool) {
	switch m.kind {
	case kindNROM:
		return m.nrom.cpuRead(c, addr)
	case kindMMC1:
		return m.mmc1.cpuRead(c, addr)
	case kindUxROM:
		return m.uxrom.cpuRead(c, addr)
	case kindCNROM:
		return m.cnrom.cpuRead(c, addr)
	case kindMMC3:
		return m.mmc3.cpuRead(c, addr)
	case kindAxROM:
		return m.axrom.cpuRead(c, addr)
	case kindGxROM:
		return m.gxrom.cpuRead(c, addr)
	}
	m.unknown()
	return 0, false
}

func (m Mapper) cpuWrite(c *Cartridge, addr uint16, value byte) bool {
	switch m.kind {
	case kindNROM:
		return m.nrom.cpuWrite(c, addr, value)
	case kindMMC1:
		return m.mmc1.cpuWrite(c, addr, value)
	case kindUxROM:
		return m.uxrom.cpuWrite(c, addr, value)
	case kindCNROM:
		return m.cnrom.cpuWrite(c, addr, value)
	case kindMMC3:
		return m.mmc3.cpuWrite(c, addr, value)
	case kindAxROM:
		return m.axrom.cpuWrite(c, addr, value)
	case kindGxROM:
		return m.gxrom.cpuWrite(c, addr, value)
	}
	m.unknown()
	return false
}

func (m Mapper) ppuRead(c *Cartridge, addr uint16) byte {
	switch m.kind {
	case kindNROM:
		return c.chr[int(addr)%len(c.chr)]
	case kindMMC1:
		return m.mmc1.ppuRead(c, addr)
	case kindUxROM:
		return c.chr[int(addr)%len(c.chr)]
	case kindCNROM:
		return m.cnrom.ppuRead(c, addr)
	case kindMMC3:
		return m.mmc3.ppuRead(c, addr)
	case kindAxROM:
		return c.chr[int(addr)%len(c.chr)]
	case kindGxROM:
		return m.gxrom.ppuRead(c, addr)
	}
	m.unknown()
	return 0
}

func (m Mapper) ppuWrite(c *Cartridge, addr uint16, value byte) {
	switch m.kind {
	case kindNROM, kindUxROM, kindAxROM:
		c.chrWrite(int(addr)%len(c.chr), value)
	case kindMMC1:
		m.mmc1.ppuWrite(c, addr, value)
	case kindCNROM:
		c.chrWrite(m.cnrom.chrOffset+int(addr&0x1FFF), value)
	case kindMMC3:
		m.mmc3.ppuWrite(c, addr, value)
	case kindGxROM:
		c.chrWrite(m.gxrom.chrOffset+int(addr&0x1FFF), value)
	default:
		m.unknown()
	}
}

// updatedMirroring 返回 mapper 设置的镜像模式. false 表示使用文件头里的值
func (m Mapper) updatedMirroring() (Mirroring, bool) {
	switch m.kind {
	case kindNROM, kindUxROM, kindCNROM, kindGxROM:
		return 0, false
	case kindMMC1:
		return m.mmc1.mirroring, m.mmc1.mirroringSet
	case kindMMC3:
		return m.mmc3.mirroring, m.mmc3.mirroringSet
	case kindAxROM:
		return m.axrom.mirroring, true
	}
	m.unknown()
	return 0, false
}

// notifyScanline 由 PPU 在每条渲染扫描线的 260 周期调用
func (m Mapper) notifyScanline() {
	switch m.kind {
	case kindMMC3:
		m.mmc3.notifyScanline()
	case kindNROM, kindMMC1, kindUxROM, kindCNROM, kindAxROM, kindGxROM:
	default:
		m.unknown()
	}
}

func (m Mapper) irqActive() bool {
	switch m.kind {
	case kindMMC3:
		return m.mmc3.irqActive
	case kindNROM, kindMMC1, kindUxROM, kindCNROM, kindAxROM, kindGxROM:
		return false
	}
	m.unknown()
	return false
}

func (m Mapper) reset(c *Cartridge) {
	switch m.kind {
	case kindNROM:
	case kindMMC1:
		m.mmc1.reset(c)
	case kindUxROM:
		m.uxrom.reset(c)
	case kindCNROM:
		m.cnrom.reset(c)
	case kindMMC3:
		m.mmc3.reset(c)
	case kindAxROM:
		m.axrom.reset(c)
	case kindGxROM:
		m.gxrom.reset(c)
	default:
		m.unknown()
	}
}
