// Package i18n holds the user-facing messages for API error codes.
// Portuguese is the default language; English is selected from Accept-Language.
package i18n

import (
	"context"
	"strings"
)

const DefaultLang = "pt"

type ctxKey struct{}

var messages = map[string]map[string]string{
	"pt": {
		"required":             "Obrigatório",
		"must_be_positive":     "Deve ser maior que zero",
		"must_not_be_negative": "Não pode ser negativo",
		"too_large":            "Valor acima do limite permitido",
		"invalid_email":        "E-mail inválido",
		"invalid_choice":       "Opção inválida",
		"too_short":            "Muito curto",
		"invalid_json":         "JSON inválido",
		"invalid_id":           "Identificador inválido",
		"validation_failed":    "Dados inválidos",
		"not_found":            "Registro não encontrado",
		"client_not_found":     "Cliente não encontrado",
		"product_not_found":    "Produto não encontrado",
		"material_not_found":   "Material não encontrado",
		"order_not_found":      "Pedido não encontrado",
		"user_not_found":       "Usuário não encontrado",
		"invalid_date":         "Data inválida",
		"invalid_month":        "Mês inválido",
		"insufficient_stock":   "Estoque insuficiente",
		"conflict":             "Operação em conflito com registros existentes",
		"material_in_use":      "Material em uso por produtos",
		"unauthorized":         "Não autenticado",
		"forbidden":            "Acesso negado",
		"invalid_credentials":  "E-mail ou senha inválidos",
		"internal_error":       "Erro interno",
	},
	"en": {
		"required":             "Required",
		"must_be_positive":     "Must be greater than zero",
		"must_not_be_negative": "Must not be negative",
		"too_large":            "Value is above the allowed limit",
		"invalid_email":        "Invalid email",
		"invalid_choice":       "Invalid choice",
		"too_short":            "Too short",
		"invalid_json":         "Invalid JSON",
		"invalid_id":           "Invalid identifier",
		"validation_failed":    "Validation failed",
		"not_found":            "Not found",
		"client_not_found":     "Client not found",
		"product_not_found":    "Product not found",
		"material_not_found":   "Material not found",
		"order_not_found":      "Order not found",
		"user_not_found":       "User not found",
		"invalid_date":         "Invalid date",
		"invalid_month":        "Invalid month",
		"insufficient_stock":   "Insufficient stock",
		"conflict":             "Operation conflicts with existing records",
		"material_in_use":      "Material is used by products",
		"unauthorized":         "Unauthorized",
		"forbidden":            "Forbidden",
		"invalid_credentials":  "Invalid email or password",
		"internal_error":       "Internal error",
	},
}

// DetectLanguage picks "en" when the first Accept-Language tag is English,
// otherwise the default.
func DetectLanguage(acceptLanguage string) string {
	first := strings.TrimSpace(strings.SplitN(acceptLanguage, ",", 2)[0])
	first = strings.ToLower(strings.SplitN(first, ";", 2)[0])
	if strings.HasPrefix(first, "en") {
		return "en"
	}
	return DefaultLang
}

// T translates code. Unknown languages use the default language; unknown codes
// are returned unchanged.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

func LangFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKey{}).(string); ok && s != "" {
		return s
	}
	return DefaultLang
}
