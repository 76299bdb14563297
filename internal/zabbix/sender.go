package zabbix

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"syshealth/pkg/zabbix"

	"go.uber.org/zap"
)

const (
	// Zabbix Sender протокол
	senderHeader  = "ZBXD\x01"
	senderDataLen = 8

	// максимальный размер ответа
	maxResponseLen = 1024 * 1024
)

// Sender реализует Zabbix Sender протокол
type Sender struct {
	serverHost string
	serverPort int
	timeout    time.Duration
	logger     *zap.Logger
}

// NewSender создает новый Zabbix Sender
func NewSender(serverHost string, serverPort int, timeout time.Duration, logger *zap.Logger) *Sender {
	return &Sender{
		serverHost: serverHost,
		serverPort: serverPort,
		timeout:    timeout,
		logger:     logger,
	}
}

// Addr адрес сервера
func (s *Sender) Addr() string {
	return net.JoinHostPort(s.serverHost, strconv.Itoa(s.serverPort))
}

// SendData отправляет данные через Zabbix Sender протокол
func (s *Sender) SendData(ctx context.Context, data []zabbix.SenderData) error {
	if len(data) == 0 {
		return nil
	}

	s.logger.Debug("Sending data via Zabbix Sender",
		zap.String("addr", s.Addr()),
		zap.Int("items", len(data)))

	// Создаем запрос
	request := zabbix.SenderRequest{
		Request: "sender data",
		Data:    data,
		Clock:   time.Now().Unix(),
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal sender request: %w", err)
	}

	response, err := s.sendPacket(ctx, buildPacket(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send packet: %w", err)
	}

	var senderResp zabbix.SenderResponse
	if err := json.Unmarshal(response, &senderResp); err != nil {
		return fmt.Errorf("failed to parse sender response: %w", err)
	}

	if senderResp.Response != "success" {
		return fmt.Errorf("zabbix sender error: %s", senderResp.Info)
	}

	// Сервер принимает пакет целиком, но может отбросить отдельные элементы
	if info, err := senderResp.ParseInfo(); err == nil && info.Failed > 0 {
		s.logger.Warn("Zabbix rejected some items",
			zap.Int("processed", info.Processed),
			zap.Int("failed", info.Failed),
			zap.Int("total", info.Total))
	}

	s.logger.Debug("Successfully sent data via Zabbix Sender",
		zap.String("info", senderResp.Info))

	return nil
}

// buildPacket создает пакет согласно протоколу Zabbix Sender
func buildPacket(data []byte) []byte {
	packet := make([]byte, 0, len(senderHeader)+senderDataLen+len(data))
	packet = append(packet, senderHeader...)
	packet = binary.LittleEndian.AppendUint64(packet, uint64(len(data)))
	packet = append(packet, data...)
	return packet
}

// sendPacket отправляет пакет на Zabbix сервер и возвращает ответ
func (s *Sender) sendPacket(ctx context.Context, packet []byte) ([]byte, error) {
	dialer := &net.Dialer{
		Timeout: s.timeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", s.Addr())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zabbix server: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set connection deadline: %w", err)
	}

	if _, err := conn.Write(packet); err != nil {
		return nil, fmt.Errorf("failed to write packet: %w", err)
	}

	response, err := readResponse(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return response, nil
}

// readResponse читает ответ от Zabbix сервера
func readResponse(r io.Reader) ([]byte, error) {
	header := make([]byte, len(senderHeader)+senderDataLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if !bytes.Equal(header[:len(senderHeader)], []byte(senderHeader)) {
		return nil, fmt.Errorf("invalid response header: %q", header[:len(senderHeader)])
	}

	dataLen := binary.LittleEndian.Uint64(header[len(senderHeader):])
	if dataLen > maxResponseLen {
		return nil, fmt.Errorf("response data too large: %d bytes", dataLen)
	}

	data := make([]byte, dataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("failed to read response data: %w", err)
	}

	return data, nil
}
