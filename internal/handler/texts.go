package handler

import (
	"fmt"
	"strings"

	"ledgerbot/internal/domain"
)

const (
	textAskEmail     = "Para empezar, envía tu correo electrónico (ej: nombre@dominio.com)"
	textInvalidEmail = "Ese correo no parece válido. Envía tu correo electrónico (ej: nombre@dominio.com)"
	textEmailSaved   = "Listo. Guardé tu correo."
	textAskName      = "¿Cómo quieres que te llame? (envía tu nombre)"
	textInvalidName  = "Envía un nombre de al menos 2 caracteres."

	textProvisionFailed = "No pude crear/compartir tu Excel. Informa al administrador."

	textInvalidOption   = "Elige una opción válida de la lista o 0 para volver al menú."
	textAskAmount       = "Ingresa el monto (ej: 120, 120.50):\n0) Menú"
	textInvalidAmount   = "Monto inválido. Intenta de nuevo (ej: 120, 120.50).\n0) Menú"
	textInvalidCategory = "Nombre inválido. Envía un nombre para la categoría o 0 para menú."
	textCategoryFailed  = "No pude agregar la categoría. Intenta de nuevo o usa 0 para volver al menú."
	textAppendFailed    = "⚠️ No se pudo registrar el movimiento. Informa al administrador."
	textCancelled       = "Cancelado. Volviendo al menú..."
	textNoMovements     = "Aún no tienes movimientos registrados."
	textMovementsFailed = "⚠️ No pude leer tus movimientos. Intenta más tarde."

	textUnexpected   = "⚠️ Ocurrió un error inesperado procesando tu mensaje."
	textUnauthorized = "🚫 Tu número no está autorizado para usar este servicio. Contacta al administrador."

	textAdminOnly      = "🚫 No estás autorizado como administrador."
	textAdminFailed    = "⚠️ No se pudo completar la operación. Revisa la configuración de Sheets."
	textAdminBadPhone  = "No reconocí el teléfono. Ej: admin authorize +51999999999"
	textAdminNoPhone   = "Falta el teléfono. Ej: admin status +51999999999"
	textAdminNotFound  = "Ese teléfono no existe en Suscriptores."
	textAdminUnknownOp = "Comando de administrador no reconocido."
)

// Unexpected is the reply sent when handling a message fails without a better explanation
const Unexpected = textUnexpected

func menuPrompt() string {
	return strings.Join([]string{
		"¿Qué deseas registrar?",
		"1) Ingreso",
		"2) Gasto",
	}, "\n")
}

func helpText() string {
	return strings.Join([]string{
		"📒 Registro rápido",
		"",
		"• gasto <monto> [categoria] [detalle]",
		"  ej:  gasto 25.50 comida almuerzo",
		"",
		"• ingreso <monto> [categoria] [detalle]",
		"  ej:  ingreso 1200 sueldo septiembre",
		"",
		"• movimientos: tus últimos registros",
		"",
		"Formato flexible: acepta 10,50 o 10.50",
	}, "\n")
}

func adminHelpText() string {
	return strings.Join([]string{
		"🛠️ Comandos de administrador",
		"• admin authorize <teléfono>",
		"• admin deauthorize <teléfono>",
		"• admin status <teléfono>",
		"",
		"También: admin autorizar, admin desautorizar, admin estado",
	}, "\n")
}

func greetingText(name string) string {
	return fmt.Sprintf("Perfecto, %s. Ya estás listo.", name)
}

func ledgerCreatedText(url string) string {
	return fmt.Sprintf("He creado tu Excel y lo compartí contigo. Accede aquí: %s", url)
}

func categoryPrompt(kind domain.Kind, categories []string) string {
	lines := []string{fmt.Sprintf("Selecciona categoría para %s:", kind.Label())}
	for i, c := range categories {
		lines = append(lines, fmt.Sprintf("%d) %s", i+1, c))
	}
	lines = append(lines, fmt.Sprintf("%s) Agregar nueva categoría", optionNewCategory), "", "0) Menú")
	return strings.Join(lines, "\n")
}

func newCategoryPrompt(kind domain.Kind) string {
	return fmt.Sprintf("Escribe el nombre de la nueva categoría para %s:\n0) Menú", kind.Label())
}

func categoryReadyText(name string) string {
	return fmt.Sprintf("Categoría '%s' lista. %s", name, textAskAmount)
}

func confirmPrompt(s *domain.Session) string {
	return strings.Join([]string{
		"Vas a registrar:",
		"• Tipo: " + s.Kind.Label(),
		"• Categoría: " + s.Category,
		"• Monto: " + s.Amount.StringFixed(2),
		"",
		"¿Confirmas? 1) Sí, 2) No",
	}, "\n")
}

func recordedText(tx domain.Transaction) string {
	detail := tx.Detail
	if detail == "" {
		detail = "—"
	}
	return strings.Join([]string{
		"✅ Registrado",
		"• Tipo: " + tx.Kind.Label(),
		"• Monto: " + tx.AmountString(),
		"• Categoría: " + tx.Category,
		"• Detalle: " + detail,
		"• Fecha: " + tx.Date,
		"• ID: " + tx.ID,
	}, "\n")
}

func invalidOneShotText() string {
	return "⚠️ Debes indicar un monto válido.\nEj: gasto 25.50 comida almuerzo\n\n" + helpText()
}

func movementsText(txs []domain.Transaction) string {
	lines := []string{"🧾 Últimos movimientos:"}
	for _, tx := range txs {
		line := fmt.Sprintf("%s • %s • %s • %s", tx.Date, tx.Kind.Label(), tx.Category, tx.AmountString())
		if tx.Detail != "" {
			line += " • " + tx.Detail
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func statusText(sub *domain.Subscriber) string {
	authorized := "No"
	if sub.Authorized {
		authorized = "Sí"
	}
	lines := []string{
		"📄 Estado del suscriptor",
		"• Teléfono: " + sub.Phone,
		"• Autorizado: " + authorized,
		"• Email: " + orDash(sub.Email),
		"• Nombre: " + orDash(sub.DisplayName),
		"• Sheet URL: " + orDash(sub.LedgerURL),
	}
	if sub.Note != "" {
		lines = append(lines, "• Observación: "+sub.Note)
	}
	return strings.Join(lines, "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}
