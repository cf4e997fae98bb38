package statement

import (
	"fmt"
	"strings"
)

// LowConfidenceThreshold is the score below which the model is told to report
// an illegible or ambiguous statement. It is not enforced locally.
const LowConfidenceThreshold = 50

// KnownInstitutions is the closed list of issuers the detector may name.
var KnownInstitutions = []string{
	"BBVA México",
	"Santander",
	"Citibanamex",
	"HSBC",
	"Banorte",
	"Scotiabank",
	"Inbursa",
	"Banco Azteca",
	"BanCoppel",
	"American Express",
	"Nu México",
	"Hey Banco",
}

// categoryKeywords maps each catalog entry to merchant/keyword hints.
var categoryKeywords = []struct {
	Category Category
	Keywords []string
}{
	{CategoryFood, []string{"OXXO", "7ELEVEN", "SORIANA", "WALMART", "CHEDRAUI", "LA COMER", "RESTAURANTE"}},
	{CategoryTransport, []string{"UBER", "DIDI", "GASOLINA", "PEMEX", "CASETA", "ESTACIONAMIENTO"}},
	{CategoryServices, []string{"CFE", "TELMEX", "IZZI", "MEGACABLE", "TOTALPLAY", "TELCEL", "AGUA"}},
	{CategoryEntertainment, []string{"NETFLIX", "SPOTIFY", "AMAZON", "CINEPOLIS", "CINEMEX"}},
	{CategoryHealth, []string{"FARMACIA", "SIMILARES", "HOSPITAL", "LABORATORIO", "DOCTOR"}},
	{CategoryEducation, []string{"COLEGIATURA", "UNIVERSIDAD", "ESCUELA", "LIBRERIA"}},
	{CategoryHousing, []string{"RENTA", "HIPOTECA", "MANTENIMIENTO", "PREDIAL"}},
	{CategoryShopping, []string{"LIVERPOOL", "COPPEL", "MERCADO LIBRE", "SEARS"}},
	{CategoryTransfers, []string{"SPEI", "TRANSFERENCIA", "TRASPASO"}},
}

// DetectionInstruction asks only for the account classification.
func DetectionInstruction() string {
	var b strings.Builder
	b.WriteString("Analiza este estado de cuenta bancario mexicano y determina qué tipo de cuenta es.\n\n")
	b.WriteString("INDICADORES DE TARJETA DE CRÉDITO (CREDIT_CARD):\n")
	b.WriteString("- \"pago mínimo\", \"pago para no generar intereses\"\n")
	b.WriteString("- \"fecha límite de pago\", \"fecha de corte\"\n")
	b.WriteString("- \"cargos regulares\", \"límite de crédito\", \"crédito disponible\"\n\n")
	b.WriteString("INDICADORES DE CUENTA DE DÉBITO (DEBIT_ACCOUNT):\n")
	b.WriteString("- \"cuenta de cheques\", \"cuenta de débito\", \"cuenta de nómina\"\n")
	b.WriteString("- \"saldo inicial\", \"saldo final\", \"saldo promedio\"\n")
	b.WriteString("- \"depósitos\", \"retiros\"\n\n")
	b.WriteString("INSTITUCIONES RECONOCIDAS: " + strings.Join(KnownInstitutions, ", ") + ".\n")
	b.WriteString("Si el emisor no está en la lista usa el nombre tal como aparece en el documento.\n\n")
	fmt.Fprintf(&b, "Reporta confidence entre 0 y 100; usa un valor menor a %d si el documento es ilegible o ambiguo.\n\n", LowConfidenceThreshold)
	b.WriteString("Responde ÚNICAMENTE con este JSON, sin texto adicional ni bloques de código:\n")
	b.WriteString(`{"accountCategory": "CREDIT_CARD" | "DEBIT_ACCOUNT", "institutionName": "BBVA México", "confidence": 90}`)
	b.WriteString("\n")
	return b.String()
}

// extractionTemplates holds one instruction builder per account category.
var extractionTemplates = map[AccountCategory]func(institution string) string{
	CreditCard:   creditCardInstruction,
	DebitAccount: debitAccountInstruction,
}

func creditCardInstruction(institution string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analiza este estado de cuenta de TARJETA DE CRÉDITO emitido por %s y extrae sus movimientos.\n\n", institution)
	b.WriteString("REGLAS PARA TARJETA DE CRÉDITO:\n")
	b.WriteString("1. Cada cargo, compra o comisión es un gasto: kind \"expense\" y amount NEGATIVO.\n")
	b.WriteString("2. Los pagos y abonos a la tarjeta NO son movimientos: exclúyelos por completo de la lista.\n")
	b.WriteString("3. Las bonificaciones o devoluciones de compras son kind \"income\" con amount POSITIVO.\n")
	b.WriteString("4. Las fechas pueden venir como DD-MMM-AAAA (\"15-ENE-2024\") o DD/MM: conviértelas a AAAA-MM-DD usando el año del periodo.\n")
	b.WriteString("5. Extrae TODOS los cargos del periodo, incluidos los diferidos a meses sin intereses del mes actual.\n\n")
	writeSharedRules(&b)
	return b.String()
}

func debitAccountInstruction(institution string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analiza este estado de cuenta de DÉBITO / CHEQUES emitido por %s y extrae sus movimientos.\n\n", institution)
	b.WriteString("REGLAS PARA CUENTA DE DÉBITO:\n")
	b.WriteString("1. Depósitos, transferencias recibidas, nómina e intereses son kind \"income\" con amount POSITIVO.\n")
	b.WriteString("2. Retiros, pagos, compras, domiciliaciones y comisiones son kind \"expense\" con amount NEGATIVO.\n")
	b.WriteString("3. Las fechas vienen como DD/MM/AAAA o DD-MM-AAAA: conviértelas a AAAA-MM-DD.\n")
	b.WriteString("4. No incluyas renglones de saldo inicial, saldo final ni saldo promedio.\n\n")
	writeSharedRules(&b)
	return b.String()
}

func writeSharedRules(b *strings.Builder) {
	names := make([]string, 0, len(Catalog))
	for _, c := range Catalog {
		names = append(names, string(c))
	}
	b.WriteString("CATEGORÍAS (usa EXACTAMENTE uno de estos nombres): " + strings.Join(names, ", ") + ".\n\n")

	b.WriteString("PATRONES COMUNES:\n")
	for _, ck := range categoryKeywords {
		b.WriteString("- " + strings.Join(ck.Keywords, ", ") + " = " + string(ck.Category) + "\n")
	}
	b.WriteString("- Cualquier otro concepto = " + string(CategoryOther) + "\n\n")

	b.WriteString("MONTOS: reconoce pesos mexicanos ($X,XXX.XX o $X.XXX,XX) y devuélvelos como número sin símbolo ni separador de miles.\n")
	fmt.Fprintf(b, "CONFIANZA: reporta confidence entre 0 y 100; usa un valor menor a %d si el documento es ilegible o ambiguo.\n", LowConfidenceThreshold)
	b.WriteString("RESUMEN: netBalance = totalIncome + totalExpenses; totalExpenses es negativo; categoryBreakdown suma los montos por categoría.\n\n")

	b.WriteString("Responde ÚNICAMENTE con JSON válido con esta forma:\n")
	b.WriteString(`{
  "confidence": 85,
  "transactions": [
    {"date": "2024-01-15", "description": "COMPRA OXXO CENTRO DF", "category": "Alimentación", "amount": -150.50, "kind": "expense"}
  ],
  "summary": {"totalIncome": 15000, "totalExpenses": -8500, "netBalance": 6500, "transactionCount": 45, "period": "Enero 2024"},
  "categoryBreakdown": {"Alimentación": -2500, "Transporte": -1200}
}`)
	b.WriteString("\n\nCRÍTICO: solo JSON válido, sin texto adicional, sin comentarios y sin bloques de código.\n")
}

func init() {
	for _, c := range AccountCategories {
		if _, ok := extractionTemplates[c]; !ok {
			panic(fmt.Sprintf("statement: no extraction template for account category %s", c))
		}
	}
}
