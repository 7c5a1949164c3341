package printer

import (
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

func sampleRecord() *models.TimeRecord {
	return &models.TimeRecord{
		ID:        "6f1a2b3c-4d5e-6789-abcd-ef0123456789",
		Type:      models.RecordEntry,
		Timestamp: time.Date(2024, 3, 15, 8, 2, 30, 0, time.Local),
		User: models.User{
			Name:       "Maria Silva",
			EmployeeID: "EMP042",
		},
	}
}

func TestBuildTimeRecordCommand(t *testing.T) {
	company := CompanyInfo{
		Name:    "ACME Ltda",
		Address: "Rua das Flores 123",
		Phone:   "(11) 5555-0100",
		CNPJ:    "12.345.678/0001-90",
	}

	cmd := string(BuildTimeRecordCommand(sampleRecord(), company))

	// The init and cut sequences bound the stream; printers reject
	// receipts without them.
	assert.True(t, strings.HasPrefix(cmd, "\x1B@"))
	assert.True(t, strings.HasSuffix(cmd, "\x1DV\x42\x00"))

	assert.Contains(t, cmd, "\x1BE\x01")   // bold on
	assert.Contains(t, cmd, "\x1BE\x00")   // bold off
	assert.Contains(t, cmd, "\x1Ba\x01")   // center
	assert.Contains(t, cmd, "\x1Ba\x00")   // left
	assert.Contains(t, cmd, "\x1D!\x01")   // double height
	assert.Contains(t, cmd, "\x1D!\x00")   // normal size

	assert.Contains(t, cmd, "ACME Ltda")
	assert.Contains(t, cmd, "COMPROVANTE DE PONTO")
	assert.Contains(t, cmd, "Funcionario: Maria Silva")
	assert.Contains(t, cmd, "ID: EMP042")
	assert.Contains(t, cmd, "Tipo: ENTRADA")
	assert.Contains(t, cmd, "Data: 15/03/2024")
	assert.Contains(t, cmd, "Hora: 08:02:30")
	assert.Contains(t, cmd, "Registro ID: 6f1a2b3c")
}

func TestTypeLabels(t *testing.T) {
	tests := []struct {
		recordType models.RecordType
		label      string
	}{
		{models.RecordEntry, "ENTRADA"},
		{models.RecordExit, "SAIDA"},
		{models.RecordPause, "PAUSA"},
		{models.RecordReturn, "RETORNO"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, typeLabel(tt.recordType))
	}
}

func TestBuildTestCommand(t *testing.T) {
	cmd := string(BuildTestCommand())
	assert.True(t, strings.HasPrefix(cmd, "\x1B@"))
	assert.Contains(t, cmd, "Teste de conexao")
	assert.True(t, strings.HasSuffix(cmd, "\x1DV\x42\x00"))
}

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("192.168.0.50"))
	assert.NoError(t, ValidateAddress("10.0.0.1"))
	assert.ErrorIs(t, ValidateAddress("printer.local"), ErrInvalidAddress)
	assert.ErrorIs(t, ValidateAddress(""), ErrInvalidAddress)
	assert.ErrorIs(t, ValidateAddress("192.168.0"), ErrInvalidAddress)
}

func TestSendDeliversBytes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		data, _ := io.ReadAll(conn)
		received <- data
	}()

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	payload := BuildTestCommand()
	require.NoError(t, Send(context.Background(), "127.0.0.1", port, time.Second, payload))

	select {
	case data := <-received:
		assert.Equal(t, payload, data)
	case <-time.After(2 * time.Second):
		t.Fatal("printer listener never received the command")
	}
}

func TestPrintUnconfigured(t *testing.T) {
	client := NewClient(Config{})
	assert.False(t, client.Configured())
	assert.ErrorIs(t, client.Print(context.Background(), BuildTestCommand()), ErrNotConfigured)
}
