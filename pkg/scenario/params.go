package scenario

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/dealcraft/sales-engine/pkg/session"
)

// Params are the player-supplied inputs to scenario generation.
type Params struct {
	Industry string       `json:"industry"`
	Product  string       `json:"product"`
	Target   string       `json:"target"`
	Language string       `json:"language,omitempty"`
	Mode     session.Mode `json:"game_mode,omitempty"`
}

// Normalize fills defaults and canonicalizes the language tag.
// "cn" is accepted as a legacy alias for Simplified Chinese.
func (p *Params) Normalize() {
	if p.Mode == "" {
		p.Mode = session.ModeQuick
	}
	p.Language = normalizeLanguage(p.Language)
}

// Validate checks required fields. Call Normalize first.
func (p *Params) Validate() error {
	if p.Industry == "" {
		return fmt.Errorf("industry is required")
	}
	if p.Product == "" {
		return fmt.Errorf("product is required")
	}
	if p.Target == "" {
		return fmt.Errorf("target is required")
	}
	if p.Mode != session.ModeQuick && p.Mode != session.ModeDetailed {
		return fmt.Errorf("unknown game mode %q", p.Mode)
	}
	return nil
}

func normalizeLanguage(lang string) string {
	switch lang {
	case "", "cn":
		return "cn"
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "en"
	}
	base, _ := tag.Base()
	if base.String() == "zh" {
		return "cn"
	}
	return "en"
}
