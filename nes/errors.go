package nes

// 错误类型，配合 curated.Is() 使用
const (
	InvalidFormat     = "ines: invalid format: %v"
	UnsupportedMapper = "ines: unsupported mapper: %d"
	SaveIoError       = "saves: %v"
	SaveSizeMismatch  = "saves: size mismatch (%d, want %d)"
	CpuJammed         = "cpu: jammed at $%04x"
)
