package numicro

// Nuvoton NuMicro register locations. These are identical across the whole
// M051/MINI51/NANO100/NUC100..NUC240 family this driver supports.
const (
	SysBase   uint32 = 0x50000000
	SysWRProt uint32 = 0x50000100

	SysclkAHBClk uint32 = 0x50000204

	FlashISPCon uint32 = 0x5000C000
	FlashISPAdr uint32 = 0x5000C004
	FlashISPDat uint32 = 0x5000C008
	FlashISPCmd uint32 = 0x5000C00C
	FlashISPTrg uint32 = 0x5000C010
	// Undocumented ISP register, must be written with 1 during init.
	FlashCheat uint32 = 0x5000C01C

	APROMBase  uint32 = 0x00000000
	DataBase   uint32 = 0x0001F000
	LDROMBase  uint32 = 0x00100000
	ConfigBase uint32 = 0x00300000

	Config0 uint32 = 0x00300000
	Config1 uint32 = 0x00300004
)

// AHBCLK clock gate bits.
const (
	ahbclkISPEn  uint32 = 1 << 2
	ahbclkSRAMEn uint32 = 1 << 4
	ahbclkTickEn uint32 = 1 << 5
)

// ISPCON bits.
const (
	ispconISPEn  uint32 = 1 << 0
	ispconBSMask uint32 = 1 << 1
	ispconAPUEn  uint32 = 1 << 3
	ispconCFGUEn uint32 = 1 << 4
	ispconLDUEn  uint32 = 1 << 5
	ispconISPFF  uint32 = 1 << 6
)

// CONFIG0 bits.
const (
	config0CBS      uint32 = 1 << 7
	config0LockMask uint32 = 1 << 1
)

// ISP command codes written to the ISPCMD register.
const (
	CmdRead    uint32 = 0x00
	CmdWrite   uint32 = 0x21
	CmdErase   uint32 = 0x22
	CmdReadCID uint32 = 0x0B
	CmdReadDID uint32 = 0x0C
	CmdReadUID uint32 = 0x04
	CmdVecMap  uint32 = 0x2E
	// Undocumented ISP "Chip-Erase" command.
	CmdChipErase uint32 = 0x26
)

const ispTrgGo uint32 = 1 << 0

// Register access unlock keys, written to SYS_WRPROT in this order.
const (
	regKey1 uint32 = 0x59
	regKey2 uint32 = 0x16
	regKey3 uint32 = 0x88
)

// PageSize is the NuMicro flash page (sector) size in bytes.
const PageSize uint32 = 512
