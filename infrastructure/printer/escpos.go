package printer

import (
	"strings"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

// ESC/POS control sequences. Physical thermal printers depend on these
// exact bytes; do not reformat them.
const (
	esc = "\x1B"
	gs  = "\x1D"

	cmdInit         = esc + "@"
	cmdAlignCenter  = esc + "a" + "\x01"
	cmdAlignLeft    = esc + "a" + "\x00"
	cmdBoldOn       = esc + "E" + "\x01"
	cmdBoldOff      = esc + "E" + "\x00"
	cmdDoubleHeight = gs + "!" + "\x01"
	cmdNormalSize   = gs + "!" + "\x00"
	cmdCut          = gs + "V" + "\x42" + "\x00"
	feed            = "\n"
)

const separator = "================================"

// CompanyInfo is the receipt header block.
type CompanyInfo struct {
	Name    string `yaml:"name" json:"companyName"`
	Address string `yaml:"address" json:"companyAddress"`
	Phone   string `yaml:"phone" json:"companyPhone"`
	CNPJ    string `yaml:"cnpj" json:"companyCNPJ"`
}

var typeLabels = map[models.RecordType]string{
	models.RecordEntry:  "ENTRADA",
	models.RecordPause:  "PAUSA",
	models.RecordReturn: "RETORNO",
	models.RecordExit:   "SAIDA",
}

// BuildTimeRecordCommand renders the punch receipt as a raw ESC/POS
// byte stream.
func BuildTimeRecordCommand(record *models.TimeRecord, company CompanyInfo) []byte {
	var b strings.Builder

	b.WriteString(cmdInit)

	b.WriteString(cmdAlignCenter + cmdBoldOn + cmdDoubleHeight)
	b.WriteString(company.Name + feed)
	b.WriteString(cmdNormalSize + cmdBoldOff)
	b.WriteString(company.Address + feed)
	b.WriteString("Tel: " + company.Phone + feed)
	b.WriteString("CNPJ: " + company.CNPJ + feed)
	b.WriteString(feed)

	b.WriteString(cmdBoldOn + "COMPROVANTE DE PONTO" + feed + cmdBoldOff)
	b.WriteString(separator + feed)

	b.WriteString(cmdAlignLeft)
	b.WriteString("Funcionario: " + record.User.Name + feed)
	b.WriteString("ID: " + record.User.EmployeeID + feed)
	b.WriteString(feed)

	b.WriteString("Tipo: " + typeLabel(record.Type) + feed)
	b.WriteString("Data: " + record.Timestamp.Format("02/01/2006") + feed)
	b.WriteString("Hora: " + record.Timestamp.Format("15:04:05") + feed)
	b.WriteString(feed)

	b.WriteString(cmdAlignCenter)
	b.WriteString(separator + feed)
	b.WriteString("Sistema DiinPonto" + feed)
	b.WriteString("Registro ID: " + shortID(record.ID) + feed)
	b.WriteString(feed + feed)

	b.WriteString(cmdCut)

	return []byte(b.String())
}

// BuildTestCommand is the minimal connectivity probe.
func BuildTestCommand() []byte {
	return []byte(cmdInit + "Teste de conexao" + feed + feed + feed + cmdCut)
}

// BuildTextCommand wraps free text with init, trailing feed and cut.
func BuildTextCommand(text string) []byte {
	return []byte(cmdInit + cmdAlignLeft + text + feed + feed + feed + cmdCut)
}

func typeLabel(t models.RecordType) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
