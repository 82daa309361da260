package nes

import (
	"github.com/55utah/fc-simulator/curated"
	"github.com/55utah/fc-simulator/logger"
)

const (
	inesHeaderSize = 16
	trainerSize    = 512
	prgBankSize    = 0x4000
	chrBankSize    = 0x2000
)

/*
iNES 文件头

0-3: "NES" + 0x1A
4: PRG-ROM 块数目, 一块 16KB
5: CHR-ROM 块数目, 一块 8KB (0 表示卡带使用 8KB CHR-RAM)

FLAG6
76543210
||||||||
|||||||+- Mirroring: 0: 水平镜像 1: 垂直镜像
||||||+-- 1: 卡带上有没有带电池的 SRAM
|||||+--- 1: Trainer 标志, PRG 前有 512 字节
||||+---- 1: 4-Screen 模式
++++----- Mapper 号的低 4 bit

FLAG7
76543210
||||||||
||||++++- VS Unisystem / PlayChoice-10 / NES 2.0，不需要了解
++++----- Mapper 号的高 4 bit
*/

// LoadINES parses an iNES image and returns a cartridge ready to be inserted.
// Errors are curated errors of the InvalidFormat or UnsupportedMapper kind.
func LoadINES(data []byte) (*Cartridge, error) {
	if len(data) < inesHeaderSize {
		return nil, curated.Errorf(InvalidFormat, "file too short for header")
	}
	if data[0] != 'N' || data[1] != 'E' || data[2] != 'S' || data[3] != 0x1A {
		return nil, curated.Errorf(InvalidFormat, "missing NES magic")
	}

	prgNum := int(data[4])
	chrNum := int(data[5])
	flag6 := data[6]
	flag7 := data[7]

	if prgNum == 0 {
		return nil, curated.Errorf(InvalidFormat, "no PRG-ROM banks")
	}

	mirroring := MirrorHorizontal
	if flag6&0x01 != 0 {
		mirroring = MirrorVertical
	}
	if flag6&0x08 != 0 {
		mirroring = MirrorFour
	}
	battery := flag6&0x02 != 0
	mapperID := (flag7 & 0xF0) | (flag6 >> 4)

	offset := inesHeaderSize
	if flag6&0x04 != 0 {
		offset += trainerSize
	}

	prgEnd := offset + prgNum*prgBankSize
	chrEnd := prgEnd + chrNum*chrBankSize
	if len(data) < chrEnd {
		return nil, curated.Errorf(InvalidFormat, "file truncated")
	}

	prg := make([]byte, prgNum*prgBankSize)
	copy(prg, data[offset:prgEnd])

	var chr []byte
	chrRAM := chrNum == 0
	if chrRAM {
		chr = make([]byte, chrBankSize)
	} else {
		chr = make([]byte, chrNum*chrBankSize)
		copy(chr, data[prgEnd:chrEnd])
	}

	cart, err := newCartridge(prg, chr, chrRAM, mapperID, mirroring, battery)
	if err != nil {
		return nil, err
	}

	logger.Logf(logger.Allow, "ines", "PRG-ROM: %d x 16kb, CHR-ROM: %d x 8kb, mapper: %d, %s mirroring", prgNum, chrNum, mapperID, mirroring)
	return cart, nil
}
