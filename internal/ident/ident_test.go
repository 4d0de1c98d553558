package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamel(t *testing.T) {
	assert.Equal(t, "Enable", Camel("ENABLE"))
	assert.Equal(t, "TxEn", Camel("TX_EN"))
	assert.Equal(t, "TxEn", Camel("tx_en"))
	assert.Equal(t, "Ctrl", Camel("CTRL"))
	assert.Equal(t, "Fifo0", Camel("FIFO0"))
	assert.Equal(t, "Mode", Camel("mode"))
}

func TestLower(t *testing.T) {
	assert.Equal(t, "uart", Lower("UART"))
	assert.Equal(t, "dmactl", Lower("DMA_CTL"))
}

func TestUpper(t *testing.T) {
	assert.Equal(t, "UART", Upper("uart"))
	assert.Equal(t, "TX_EN", Upper("tx_en"))
}
