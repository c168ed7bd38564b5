// Package openocd implements the numicro target interface on top of a
// running OpenOCD server's Tcl RPC service (default port 6666). Messages on
// the wire are Tcl scripts terminated by 0x1a; the reply is the command
// result with the same terminator.
//
// The adapter covers memory access and the halt query. It does not expose
// OpenOCD's working-area allocator, so scratch requests report resource
// unavailability and bulk writes degrade to the driver's single-word path.
package openocd

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/juju/errors"

	"github.com/nuvotools/nuflash/numicro"
)

const msgTerminator = 0x1a

// Client is a connection to an OpenOCD Tcl RPC server.
type Client struct {
	conn net.Conn
	rd   *bufio.Reader
}

// Dial connects to the Tcl RPC service at addr, e.g. "localhost:6666".
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, errors.Annotatef(err, "connecting to openocd at %s", addr)
	}
	return &Client{conn: conn, rd: bufio.NewReader(conn)}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Exec sends one Tcl command and returns its result string.
func (c *Client) Exec(cmd string) (string, error) {
	glog.V(2).Infof("tcl> %s", cmd)
	if _, err := c.conn.Write(append([]byte(cmd), msgTerminator)); err != nil {
		return "", errors.Annotatef(err, "sending %q", cmd)
	}
	resp, err := c.rd.ReadString(msgTerminator)
	if err != nil {
		return "", errors.Annotatef(err, "reading reply to %q", cmd)
	}
	resp = strings.TrimSuffix(resp, string(rune(msgTerminator)))
	glog.V(2).Infof("tcl< %s", resp)
	return resp, nil
}

func (c *Client) ReadWord(addr uint32) (uint32, error) {
	resp, err := c.Exec(fmt.Sprintf("read_memory 0x%08x 32 1", addr))
	if err != nil {
		return 0, errors.Trace(err)
	}
	value, err := strconv.ParseUint(strings.TrimSpace(resp), 0, 32)
	if err != nil {
		return 0, errors.Annotatef(err, "bad read_memory reply %q", resp)
	}
	return uint32(value), nil
}

func (c *Client) WriteWord(addr uint32, value uint32) error {
	_, err := c.Exec(fmt.Sprintf("write_memory 0x%08x 32 {0x%08x}", addr, value))
	return errors.Trace(err)
}

func (c *Client) WriteBuffer(addr uint32, data []byte) error {
	// write_memory takes a Tcl list of words; trailing bytes are sent as
	// single byte writes.
	var words []string
	n := len(data) &^ 3
	for i := 0; i < n; i += 4 {
		w := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16 | uint32(data[i+3])<<24
		words = append(words, fmt.Sprintf("0x%08x", w))
	}
	if len(words) > 0 {
		_, err := c.Exec(fmt.Sprintf("write_memory 0x%08x 32 {%s}", addr, strings.Join(words, " ")))
		if err != nil {
			return errors.Trace(err)
		}
	}
	for i := n; i < len(data); i++ {
		_, err := c.Exec(fmt.Sprintf("write_memory 0x%08x 8 {0x%02x}", addr+uint32(i), data[i]))
		if err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (c *Client) Halted() bool {
	resp, err := c.Exec("[target current] curstate")
	if err != nil {
		return false
	}
	return strings.TrimSpace(resp) == "halted"
}

func (c *Client) AllocScratch(size uint32) (*numicro.ScratchArea, error) {
	return nil, errors.Trace(numicro.ErrResourceUnavailable)
}

func (c *Client) FreeScratch(area *numicro.ScratchArea) {}

func (c *Client) WorkingAreaSize() uint32 { return 0 }

func (c *Client) RunRoutine(entry uint32, timeout time.Duration, regs []numicro.RoutineReg) ([]uint32, error) {
	return nil, errors.Trace(numicro.ErrResourceUnavailable)
}

var _ numicro.Target = (*Client)(nil)
