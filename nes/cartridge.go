package nes

import (
	"github.com/55utah/fc-simulator/curated"
)

// Cartridge owns the PRG and CHR storage of a game and the mapper circuit
// that decides how the storage is seen by the CPU and the PPU.
type Cartridge struct {
	prg    []byte
	chr    []byte
	chrRAM bool // CHR 块数目为 0 时可写
	sram   []byte

	mapperID  byte
	mapper    Mapper
	mirroring Mirroring // 文件头里的镜像模式
	battery   bool
}

func newCartridge(prg, chr []byte, chrRAM bool, mapperID byte, mirroring Mirroring, battery bool) (*Cartridge, error) {
	c := &Cartridge{
		prg:       prg,
		chr:       chr,
		chrRAM:    chrRAM,
		mapperID:  mapperID,
		mirroring: mirroring,
		battery:   battery,
	}

	m, sramSize, err := newMapper(mapperID, c)
	if err != nil {
		return nil, err
	}
	c.mapper = m
	if sramSize > 0 {
		c.sram = make([]byte, sramSize)
	}

	return c, nil
}

// MapperID is the iNES mapper number.
func (c *Cartridge) MapperID() byte {
	return c.mapperID
}

// Mirroring returns the mirroring currently in effect. Some mappers change
// it at runtime, otherwise the header value is used.
func (c *Cartridge) Mirroring() Mirroring {
	if m, ok := c.mapper.updatedMirroring(); ok {
		return m
	}
	return c.mirroring
}

// PRGBanks is the number of 16KB PRG-ROM banks.
func (c *Cartridge) PRGBanks() int {
	return len(c.prg) / prgBankSize
}

// CHRBanks is the number of 8KB CHR-ROM banks. Zero for CHR-RAM.
func (c *Cartridge) CHRBanks() int {
	if c.chrRAM {
		return 0
	}
	return len(c.chr) / chrBankSize
}

// HasSaveRAM is true when the cartridge declares battery backed RAM and the
// mapper provides it.
func (c *Cartridge) HasSaveRAM() bool {
	return c.battery && len(c.sram) > 0
}

// SaveRAM returns a copy of the battery backed RAM. Nil if there is none.
func (c *Cartridge) SaveRAM() []byte {
	if !c.HasSaveRAM() {
		return nil
	}
	d := make([]byte, len(c.sram))
	copy(d, c.sram)
	return d
}

// LoadSaveRAM replaces the battery backed RAM. The data must be exactly the
// size of the save RAM.
func (c *Cartridge) LoadSaveRAM(data []byte) error {
	if !c.HasSaveRAM() {
		return curated.Errorf(SaveIoError, "cartridge has no save RAM")
	}
	if len(data) != len(c.sram) {
		return curated.Errorf(SaveSizeMismatch, len(data), len(c.sram))
	}
	copy(c.sram, data)
	return nil
}

func (c *Cartridge) cpuRead(addr uint16) (byte, bool) {
	return c.mapper.cpuRead(c, addr)
}

func (c *Cartridge) cpuWrite(addr uint16, value byte) bool {
	return c.mapper.cpuWrite(c, addr, value)
}

func (c *Cartridge) ppuRead(addr uint16) byte {
	return c.mapper.ppuRead(c, addr)
}

func (c *Cartridge) ppuWrite(addr uint16, value byte) {
	c.mapper.ppuWrite(c, addr, value)
}

func (c *Cartridge) notifyScanline() {
	c.mapper.notifyScanline()
}

func (c *Cartridge) irqActive() bool {
	return c.mapper.irqActive()
}

// Reset puts the mapper back into its power-on state. PRG/CHR and save RAM
// are untouched.
func (c *Cartridge) Reset() {
	c.mapper.reset(c)
}

// sramRead / sramWrite: $6000-$7FFF 存档用SRAM区
func (c *Cartridge) sramRead(addr uint16) (byte, bool) {
	if len(c.sram) == 0 || addr < 0x6000 || addr >= 0x8000 {
		return 0, false
	}
	return c.sram[int(addr-0x6000)%len(c.sram)], true
}

func (c *Cartridge) sramWrite(addr uint16, value byte) bool {
	if len(c.sram) == 0 || addr < 0x6000 || addr >= 0x8000 {
		return false
	}
	c.sram[int(addr-0x6000)%len(c.sram)] = value
	return true
}

// chrWrite 只有 CHR-RAM 可写
func (c *Cartridge) chrWrite(offset int, value byte) {
	if c.chrRAM {
		c.chr[offset] = value
	}
}

// bankOffset 计算 bank 在存储中的字节偏移. 负数从末尾倒数, 比如 -1 是最后一个
// bank. 超出范围的 bank 号按 bank 总数取模, 就像卡带上没有接的地址线.
func bankOffset(bank int, size int, length int) int {
	count := length / size
	if count == 0 {
		panic("mapper: storage smaller than bank size")
	}
	bank %= count
	if bank < 0 {
		bank += count
	}
	return bank * size
}
