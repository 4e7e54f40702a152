package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// LabelResolver traduce códigos del catálogo a etiquetas legibles.
// Se usa solo en el borde HTTP/CLI; el core de lifecycle no conoce locales.
type LabelResolver interface {
	Match(prefs ...string) language.Tag
	StatusLabel(tag language.Tag, code string) string
	LocationLabel(tag language.Tag, code string) string
	WarningMessage(tag language.Tag, warningCode, statusCode string) string
}

type Resolver struct {
	cat       *catalog.Builder
	supported []language.Tag
	matcher   language.Matcher
	fallback  language.Tag
}

var messages = map[language.Tag]map[string]string{
	language.English: {
		"status.QUARANTINE":      "Quarantine",
		"status.IN_CARE":         "In care",
		"status.TRIAL":           "Trial adoption",
		"status.ADOPTED":         "Adopted",
		"status.DECEASED":        "Deceased",
		"location.FACILITY":      "Shelter facility",
		"location.FOSTER_HOME":   "Foster home",
		"location.ADOPTER_HOME":  "Adopter home",
		"warning.LEAVE_ADOPTED":  "The animal is currently %s. Leaving this status reverses a completed adoption and requires confirmation.",
		"warning.LEAVE_DECEASED": "The animal is currently %s. Leaving this status corrects a recorded death and requires confirmation.",
	},
	language.Spanish: {
		"status.QUARANTINE":      "Cuarentena",
		"status.IN_CARE":         "En cuidado",
		"status.TRIAL":           "Adopción a prueba",
		"status.ADOPTED":         "Adoptado",
		"status.DECEASED":        "Fallecido",
		"location.FACILITY":      "Refugio",
		"location.FOSTER_HOME":   "Hogar de acogida",
		"location.ADOPTER_HOME":  "Hogar del adoptante",
		"warning.LEAVE_ADOPTED":  "El animal está actualmente en estado %s. Salir de este estado revierte una adopción completada y requiere confirmación.",
		"warning.LEAVE_DECEASED": "El animal está actualmente en estado %s. Salir de este estado corrige un fallecimiento registrado y requiere confirmación.",
	},
}

// NewResolver arma el catálogo de mensajes. fallback se usa cuando
// ninguna preferencia coincide; si no está soportado, se usa inglés.
func NewResolver(fallback string) *Resolver {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	supported := []language.Tag{language.English, language.Spanish}

	for tag, msgs := range messages {
		for key, msg := range msgs {
			_ = b.SetString(tag, key, msg)
		}
	}

	r := &Resolver{
		cat:       b,
		supported: supported,
		matcher:   language.NewMatcher(supported),
		fallback:  language.English,
	}
	r.fallback = r.Match(fallback)
	return r
}

// Match elige el primer locale soportado a partir de valores tipo
// Accept-Language (o un código simple "es").
func (r *Resolver) Match(prefs ...string) language.Tag {
	for _, p := range prefs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := r.matcher.Match(tags...)
		if conf != language.No {
			return r.supported[idx]
		}
	}
	return r.fallback
}

func (r *Resolver) StatusLabel(tag language.Tag, code string) string {
	return r.lookup(tag, "status."+code, code)
}

func (r *Resolver) LocationLabel(tag language.Tag, code string) string {
	return r.lookup(tag, "location."+code, code)
}

func (r *Resolver) WarningMessage(tag language.Tag, warningCode, statusCode string) string {
	key := "warning." + warningCode
	if !r.has(key) {
		return warningCode
	}
	p := message.NewPrinter(tag, message.Catalog(r.cat))
	return p.Sprintf(key, r.StatusLabel(tag, statusCode))
}

func (r *Resolver) lookup(tag language.Tag, key, fallback string) string {
	if !r.has(key) {
		return fallback
	}
	p := message.NewPrinter(tag, message.Catalog(r.cat))
	return p.Sprintf(key)
}

func (r *Resolver) has(key string) bool {
	_, ok := messages[language.English][key]
	return ok
}
