package openocd

import (
	"bufio"
	"net"
	"strings"
	"testing"

	"github.com/juju/errors"

	"github.com/nuvotools/nuflash/numicro"
)

// tclServer is a canned Tcl RPC endpoint: it records received commands and
// answers each with the next queued reply.
type tclServer struct {
	ln       net.Listener
	commands chan string
	replies  chan string
}

func newTclServer(t *testing.T) *tclServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := &tclServer{ln: ln, commands: make(chan string, 16), replies: make(chan string, 16)}
	go s.serve()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *tclServer) serve() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	rd := bufio.NewReader(conn)
	for {
		cmd, err := rd.ReadString(msgTerminator)
		if err != nil {
			return
		}
		s.commands <- strings.TrimSuffix(cmd, string(rune(msgTerminator)))
		reply := <-s.replies
		conn.Write(append([]byte(reply), msgTerminator))
	}
}

func dialTestServer(t *testing.T) (*Client, *tclServer) {
	t.Helper()
	srv := newTclServer(t)
	c, err := Dial(srv.ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestReadWord(t *testing.T) {
	c, srv := dialTestServer(t)
	srv.replies <- "0xdeadbeef"

	got, err := c.ReadWord(0x50000000)
	if err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
	if got != 0xdeadbeef {
		t.Errorf("ReadWord = 0x%08x, want 0xdeadbeef", got)
	}
	if cmd := <-srv.commands; cmd != "read_memory 0x50000000 32 1" {
		t.Errorf("sent command %q", cmd)
	}
}

func TestReadWordBadReply(t *testing.T) {
	c, srv := dialTestServer(t)
	srv.replies <- "no such command"

	if _, err := c.ReadWord(0); err == nil {
		t.Fatal("ReadWord with bad reply succeeded")
	}
	<-srv.commands
}

func TestWriteWord(t *testing.T) {
	c, srv := dialTestServer(t)
	srv.replies <- ""

	if err := c.WriteWord(0x5000c010, 1); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	if cmd := <-srv.commands; cmd != "write_memory 0x5000c010 32 {0x00000001}" {
		t.Errorf("sent command %q", cmd)
	}
}

func TestWriteBuffer(t *testing.T) {
	c, srv := dialTestServer(t)
	srv.replies <- ""
	srv.replies <- ""

	if err := c.WriteBuffer(0x20000000, []byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}
	if cmd := <-srv.commands; cmd != "write_memory 0x20000000 32 {0x04030201}" {
		t.Errorf("word write command %q", cmd)
	}
	if cmd := <-srv.commands; cmd != "write_memory 0x20000004 8 {0x05}" {
		t.Errorf("tail byte write command %q", cmd)
	}
}

func TestHalted(t *testing.T) {
	c, srv := dialTestServer(t)

	srv.replies <- "halted"
	if !c.Halted() {
		t.Error("Halted() = false for halted reply")
	}
	<-srv.commands

	srv.replies <- "running"
	if c.Halted() {
		t.Error("Halted() = true for running reply")
	}
	<-srv.commands
}

func TestScratchUnavailable(t *testing.T) {
	c, _ := dialTestServer(t)

	_, err := c.AllocScratch(1024)
	if errors.Cause(err) != numicro.ErrResourceUnavailable {
		t.Fatalf("AllocScratch = %v, want ErrResourceUnavailable", err)
	}
	if c.WorkingAreaSize() != 0 {
		t.Error("WorkingAreaSize() != 0")
	}
}
