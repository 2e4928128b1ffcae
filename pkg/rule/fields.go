package rule

import "fmt"

// Form is one attribute-quoted spelling of a field identifier.
type Form int

const (
	FormID     Form = iota // id="F"
	FormName               // name="F"
	FormFor                // for="F"
	FormQuoted             // 'F' as in @error('F') or getElementById('F')
)

// Quote renders field in the given form. Quoting on both sides keeps
// target_value from matching target_value_note.
func (f Form) Quote(field string) string {
	switch f {
	case FormID:
		return fmt.Sprintf(`id="%s"`, field)
	case FormName:
		return fmt.Sprintf(`name="%s"`, field)
	case FormFor:
		return fmt.Sprintf(`for="%s"`, field)
	case FormQuoted:
		return fmt.Sprintf(`'%s'`, field)
	default:
		return field
	}
}

// ParseForm maps a config spelling ("id", "name", "for", "quoted") to a Form.
func ParseForm(s string) (Form, bool) {
	switch s {
	case "id":
		return FormID, true
	case "name":
		return FormName, true
	case "for":
		return FormFor, true
	case "quoted":
		return FormQuoted, true
	}
	return 0, false
}

// FieldFragments expands every field in every form.
func FieldFragments(fields []string, forms ...Form) []string {
	if len(forms) == 0 {
		forms = []Form{FormID, FormName}
	}
	out := make([]string, 0, len(fields)*len(forms))
	for _, field := range fields {
		for _, form := range forms {
			out = append(out, form.Quote(field))
		}
	}
	return out
}
