package numicro

import (
	"fmt"
	"io/ioutil"

	"github.com/juju/errors"
	"github.com/sigurn/crc16"
)

var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// Image is a firmware blob prepared for ISP programming: padded to a
// longword multiple with the erased pattern and summed so a written range
// can be verified against the source file.
type Image struct {
	Data []byte
	Size uint32
	CRC  uint16
}

func (img *Image) String() string {
	return fmt.Sprintf("firmware image: %d bytes (%d padded), crc16 0x%04x",
		img.Size, len(img.Data), img.CRC)
}

// ParseImageBin wraps a raw binary blob into a programmable image.
func ParseImageBin(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty firmware image")
	}

	img := &Image{Size: uint32(len(data))}
	img.Data = make([]byte, len(data))
	copy(img.Data, data)
	for len(img.Data)%4 != 0 {
		img.Data = append(img.Data, 0xff)
	}
	img.CRC = crc16.Checksum(img.Data, crcTable)
	return img, nil
}

// LoadImage reads a raw firmware file from disk.
func LoadImage(path string) (*Image, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "reading firmware file")
	}
	return ParseImageBin(data)
}

// VerifyImage reads the programmed range back through the ISP read command
// and compares its checksum with the image.
func (b *FlashBank) VerifyImage(img *Image, offset uint32) error {
	if err := InitISP(b.Target); err != nil {
		return errors.Trace(err)
	}

	readback := make([]byte, len(img.Data))
	for i := uint32(0); i < uint32(len(img.Data)); i += 4 {
		word, err := Command(b.Target, CmdRead, b.Base+offset+i, 0)
		if err != nil {
			return errors.Trace(err)
		}
		readback[i] = byte(word)
		readback[i+1] = byte(word >> 8)
		readback[i+2] = byte(word >> 16)
		readback[i+3] = byte(word >> 24)
	}

	if got := crc16.Checksum(readback, crcTable); got != img.CRC {
		return errors.Annotatef(ErrOperationFailed,
			"verify failed: flash crc16 0x%04x, image crc16 0x%04x", got, img.CRC)
	}
	return nil
}
