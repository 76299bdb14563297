package zabbix

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"syshealth/pkg/zabbix"

	"go.uber.org/zap"
)

// fakeTrapper принимает одно соединение и отвечает заданным телом
type fakeTrapper struct {
	ln       net.Listener
	received chan zabbix.SenderRequest
}

func newFakeTrapper(t *testing.T, respond func(conn net.Conn)) *fakeTrapper {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	f := &fakeTrapper{ln: ln, received: make(chan zabbix.SenderRequest, 1)}
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		body, err := readResponse(conn)
		if err == nil {
			var req zabbix.SenderRequest
			if json.Unmarshal(body, &req) == nil {
				f.received <- req
			}
		}
		respond(conn)
	}()
	return f
}

func (f *fakeTrapper) sender(t *testing.T) *Sender {
	addr := f.ln.Addr().(*net.TCPAddr)
	return NewSender("127.0.0.1", addr.Port, 2*time.Second, zap.NewNop())
}

func writeReply(conn net.Conn, body string) {
	_, _ = conn.Write(buildPacket([]byte(body)))
}

func TestBuildPacket(t *testing.T) {
	packet := buildPacket([]byte(`{"a":1}`))

	if !bytes.HasPrefix(packet, []byte("ZBXD\x01")) {
		t.Fatalf("packet header = %q", packet[:5])
	}
	if n := binary.LittleEndian.Uint64(packet[5:13]); n != 7 {
		t.Errorf("encoded length = %d, want 7", n)
	}
	if string(packet[13:]) != `{"a":1}` {
		t.Errorf("payload = %q", packet[13:])
	}
}

func TestReadResponse(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		wantErr string
	}{
		{
			name:  "valid",
			input: buildPacket([]byte(`{"response":"success"}`)),
			want:  `{"response":"success"}`,
		},
		{
			name:    "bad header",
			input:   append([]byte("HTTP/1.1 400"), make([]byte, 8)...),
			wantErr: "invalid response header",
		},
		{
			name:    "short header",
			input:   []byte("ZBX"),
			wantErr: "failed to read header",
		},
		{
			name:    "truncated body",
			input:   buildPacket([]byte(`{"response":"success"}`))[:20],
			wantErr: "failed to read response data",
		},
		{
			name: "too large",
			input: func() []byte {
				b := []byte(senderHeader)
				return binary.LittleEndian.AppendUint64(b, maxResponseLen+1)
			}(),
			wantErr: "too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readResponse(bytes.NewReader(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("readResponse() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("readResponse() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("readResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

// slowReader отдает данные по одному байту
type slowReader struct{ r io.Reader }

func (s slowReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return s.r.Read(p[:1])
}

func TestReadResponse_PartialReads(t *testing.T) {
	packet := buildPacket([]byte(`{"response":"success","info":"processed: 1"}`))
	got, err := readResponse(slowReader{bytes.NewReader(packet)})
	if err != nil {
		t.Fatalf("readResponse() error = %v", err)
	}
	if !strings.Contains(string(got), "processed: 1") {
		t.Errorf("readResponse() = %q", got)
	}
}

func TestSender_SendData(t *testing.T) {
	trapper := newFakeTrapper(t, func(conn net.Conn) {
		writeReply(conn, `{"response":"success","info":"processed: 2; failed: 0; total: 2; seconds spent: 0.000055"}`)
	})

	data := []zabbix.SenderData{
		{Host: "web-1", Key: zabbix.KeyTick, Value: "7"},
		{Host: "web-1", Key: zabbix.KeyMemoryUsed, Value: "768"},
	}

	if err := trapper.sender(t).SendData(context.Background(), data); err != nil {
		t.Fatalf("SendData() error = %v", err)
	}

	select {
	case req := <-trapper.received:
		if req.Request != "sender data" {
			t.Errorf("request = %q, want sender data", req.Request)
		}
		if len(req.Data) != 2 || req.Data[0].Key != zabbix.KeyTick || req.Data[1].Value != "768" {
			t.Errorf("unexpected data: %+v", req.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("trapper did not receive the request")
	}
}

func TestSender_SendData_Failure(t *testing.T) {
	trapper := newFakeTrapper(t, func(conn net.Conn) {
		writeReply(conn, `{"response":"failed","info":"host not monitored"}`)
	})

	err := trapper.sender(t).SendData(context.Background(), []zabbix.SenderData{{Host: "h", Key: "k", Value: "1"}})
	if err == nil || !strings.Contains(err.Error(), "host not monitored") {
		t.Fatalf("SendData() error = %v, want zabbix sender error", err)
	}
}

func TestSender_SendData_Empty(t *testing.T) {
	// пустая пачка не открывает соединение
	s := NewSender("127.0.0.1", 1, time.Second, zap.NewNop())
	if err := s.SendData(context.Background(), nil); err != nil {
		t.Errorf("SendData(nil) error = %v", err)
	}
}

func TestSender_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	s := NewSender("127.0.0.1", port, time.Second, zap.NewNop())
	err = s.SendData(context.Background(), []zabbix.SenderData{{Host: "h", Key: "k", Value: "1"}})
	if err == nil || !strings.Contains(err.Error(), "failed to connect") {
		t.Errorf("SendData() error = %v, want connect error", err)
	}
}
