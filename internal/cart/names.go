package cart

import (
	"strings"
	"unicode"

	"tallermatch/internal/models"
)

// fallbackServiceName is used only when a staged offer carries neither a
// name nor an id to derive one from. Items must never persist nameless.
const fallbackServiceName = "Servicio sin nombre"

// nameRule extracts a candidate service name from one known payload
// shape. Rules are evaluated in priority order and the first non-empty
// match wins; new backend shapes are added to the list, not branched on.
type nameRule struct {
	source string
	get    func(models.ServiceOffer) string
}

var serviceNameRules = []nameRule{
	{"nombre", func(o models.ServiceOffer) string { return o.Name }},
	{"informacionServicio.nombre", func(o models.ServiceOffer) string {
		if o.ServiceInfo == nil {
			return ""
		}
		return o.ServiceInfo.Name
	}},
	{"servicio.nombre", func(o models.ServiceOffer) string {
		if o.Service == nil {
			return ""
		}
		return o.Service.Name
	}},
	{"ofertaServicioID", func(o models.ServiceOffer) string {
		return humanizeID(o.OfferServiceID)
	}},
}

// ResolveServiceName walks the extraction rules and returns the first
// non-empty candidate.
func ResolveServiceName(offer models.ServiceOffer) string {
	for _, rule := range serviceNameRules {
		if name := strings.TrimSpace(rule.get(offer)); name != "" {
			return name
		}
	}
	return fallbackServiceName
}

// humanizeID turns an offer id like "123-oil-change" into "Oil Change":
// dash-separated, numeric tokens dropped, the rest title-cased.
func humanizeID(id string) string {
	var words []string
	for _, token := range strings.Split(id, "-") {
		token = strings.TrimSpace(token)
		if token == "" || isNumeric(token) {
			continue
		}
		words = append(words, titleCase(token))
	}
	return strings.Join(words, " ")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
