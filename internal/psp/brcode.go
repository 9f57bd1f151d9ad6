package psp

import (
	"fmt"
	"strings"
	"unicode"
)

// EMV field ids used by the PIX BR Code payload.
const (
	emvPayloadFormat   = "00"
	emvInitiation      = "01"
	emvMerchantAccount = "26"
	emvCategoryCode    = "52"
	emvCurrency        = "53"
	emvAmount          = "54"
	emvCountry         = "58"
	emvMerchantName    = "59"
	emvMerchantCity    = "60"
	emvAdditionalData  = "62"
	emvCRC             = "63"

	pixGUI          = "br.gov.bcb.pix"
	currencyBRL     = "986"
	maxNameLength   = 25
	maxCityLength   = 15
	maxTxIDLength   = 25
	initiationOnce  = "12"
	payloadVersion1 = "01"
)

// BRCode describes a PIX "copia e cola" payload.
type BRCode struct {
	Key          string
	MerchantName string
	MerchantCity string
	Amount       int64
	TxID         string
	Description  string
}

// String renders the EMV payload including its CRC16 checksum.
func (b BRCode) String() string {
	account := emvField("00", pixGUI) + emvField("01", b.Key)
	if desc := sanitize(b.Description, 40); desc != "" {
		account += emvField("02", desc)
	}

	txID := alnum(b.TxID, maxTxIDLength)
	if txID == "" {
		txID = "***"
	}

	var sb strings.Builder
	sb.WriteString(emvField(emvPayloadFormat, payloadVersion1))
	sb.WriteString(emvField(emvInitiation, initiationOnce))
	sb.WriteString(emvField(emvMerchantAccount, account))
	sb.WriteString(emvField(emvCategoryCode, "0000"))
	sb.WriteString(emvField(emvCurrency, currencyBRL))
	if b.Amount > 0 {
		sb.WriteString(emvField(emvAmount, fmt.Sprintf("%d.%02d", b.Amount/100, b.Amount%100)))
	}
	sb.WriteString(emvField(emvCountry, "BR"))
	sb.WriteString(emvField(emvMerchantName, sanitize(b.MerchantName, maxNameLength)))
	sb.WriteString(emvField(emvMerchantCity, sanitize(b.MerchantCity, maxCityLength)))
	sb.WriteString(emvField(emvAdditionalData, emvField("05", txID)))
	sb.WriteString(emvCRC + "04")

	payload := sb.String()
	return payload + fmt.Sprintf("%04X", CRC16(payload))
}

// CRC16 computes CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF), the BR Code checksum.
func CRC16(data string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func emvField(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// sanitize keeps printable ASCII and truncates to max bytes.
func sanitize(value string, max int) string {
	var sb strings.Builder
	for _, r := range value {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			r = foldAccent(r)
			if r == 0 {
				continue
			}
		}
		sb.WriteRune(r)
		if sb.Len() >= max {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

func alnum(value string, max int) string {
	var sb strings.Builder
	for _, r := range value {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
			if sb.Len() == max {
				break
			}
		}
	}
	return sb.String()
}

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'ê': 'e', 'è': 'e',
	'í': 'i', 'î': 'i',
	'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ü': 'u',
	'ç': 'c',
	'Á': 'A', 'À': 'A', 'Â': 'A', 'Ã': 'A',
	'É': 'E', 'Ê': 'E',
	'Í': 'I',
	'Ó': 'O', 'Ô': 'O', 'Õ': 'O',
	'Ú': 'U',
	'Ç': 'C',
}

func foldAccent(r rune) rune {
	return accentFold[r]
}
