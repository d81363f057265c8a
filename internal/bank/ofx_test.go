package bank

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/kantoor/internal/common"
)

const sampleOFX = `
OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250901120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>INGB
<ACCTID>NL91INGB0001234567
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250801120000[0:GMT]
<DTEND>20250831120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250815120000[0:GMT]
<TRNAMT>-25.50
<FITID>2025081501
<NAME>BEA ALBERT HEIJN 1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250801120000[0:GMT]
<TRNAMT>1500.00
<FITID>2025080101
<NAME>Transport Klant BV
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250820120000[0:GMT]
<TRNAMT>-125.00
<FITID>2025082001
<NAME>INCASSO
<MEMO>Shell Nederland
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20250831120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseOFX(t *testing.T) {
	txns, err := ParseOFX(context.Background(), strings.NewReader(sampleOFX))
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, "2025080101", txns[0].ID, "sorted by posting date")
	assert.False(t, txns[0].IsDebit())
	assert.Equal(t, "Transport Klant BV", txns[0].Counterparty)

	assert.Equal(t, "ALBERT HEIJN 1234", txns[1].Counterparty)
	assert.Equal(t, "-25.50", txns[1].Amount.StringFixed(2))
	assert.Equal(t, "NL91INGB0001234567", txns[1].AccountID)
	assert.True(t, txns[1].IsDebit())

	assert.Equal(t, "Shell Nederland", txns[2].Counterparty, "generic name falls back to memo")
	assert.Equal(t, "INCASSO", txns[2].Name)
}

func TestParseOFX_Invalid(t *testing.T) {
	_, err := ParseOFX(context.Background(), strings.NewReader("not an ofx file"))
	assert.ErrorIs(t, err, common.ErrInvalidFile)
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n  <OFX>\n<SEVERITY>Warn</SEVERITY>\n<CODE\n"
	out := preprocessOFX(in)

	assert.True(t, strings.HasPrefix(out, "<OFX>"))
	assert.Contains(t, out, "<SEVERITY>WARN</SEVERITY>")
	assert.Contains(t, out, "<CODE>")
}

func TestOFXSource_FiltersRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "augustus.ofx")
	require.NoError(t, os.WriteFile(path, []byte(sampleOFX), 0o600))

	source := OFXSource{Path: path}
	txns, err := source.GetTransactions(context.Background(),
		time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "2025081501", txns[0].ID)
	assert.Equal(t, "2025082001", txns[1].ID)

	all, err := source.GetTransactions(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOFXSource_MissingFile(t *testing.T) {
	_, err := OFXSource{Path: filepath.Join(t.TempDir(), "missing.ofx")}.
		GetTransactions(context.Background(), time.Time{}, time.Time{})
	assert.Error(t, err)
}
