package docx

import (
	"encoding/xml"
	"fmt"
	"sort"
)

// StyleType is the w:type of a style definition.
type StyleType string

const (
	StyleParagraph StyleType = "paragraph"
	StyleCharacter StyleType = "character"
	StyleTable     StyleType = "table"
	StyleNumbering StyleType = "numbering"
)

// Style describes a style defined in a template's styles.xml.
type Style struct {
	ID      string
	Name    string
	Type    StyleType
	BasedOn string
	Default bool
	Custom  bool
}

// Styles returns the styles the template defines, sorted by ID. A template
// without styles.xml has no styles.
func (t *Template) Styles() ([]Style, error) {
	data, err := t.getFileContent(partStyles)
	if err != nil {
		return nil, nil
	}

	var sx stylesXML
	if err := xml.Unmarshal(data, &sx); err != nil {
		return nil, fmt.Errorf("unmarshaling styles.xml: %w", err)
	}

	styles := make([]Style, 0, len(sx.Styles))
	for _, s := range sx.Styles {
		styles = append(styles, Style{
			ID:      s.StyleID,
			Name:    s.Name.Val,
			Type:    StyleType(s.Type),
			BasedOn: s.BasedOn.Val,
			Default: s.Default == "1" || s.Default == "true",
			Custom:  s.CustomStyle == "1" || s.CustomStyle == "true",
		})
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i].ID < styles[j].ID })
	return styles, nil
}

// MissingStyles reports which of the given identifiers the template does not
// define with the given style type. The result keeps the input order.
func (t *Template) MissingStyles(typ StyleType, ids []string) ([]string, error) {
	styles, err := t.Styles()
	if err != nil {
		return nil, err
	}
	defined := make(map[string]bool, len(styles))
	for _, s := range styles {
		if s.Type == typ {
			defined[s.ID] = true
		}
	}
	var missing []string
	for _, id := range ids {
		if !defined[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
