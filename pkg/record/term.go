package record

import "errors"

// Term is a descriptor of the data dictionary. Its global identifier is
// the name of the data field it describes.
type Term struct {
	GID      string  `json:"_key"`
	Class    string  `json:"_class,omitempty"`
	Domains  Strings `json:"_domain,omitempty"`
	Tags     Strings `json:"_tag,omitempty"`
	Subjects Strings `json:"_subject,omitempty"`
}

// Validate checks that the term has an identifier.
func (t Term) Validate() error {
	if t.GID == "" {
		return errors.New("term identifier _key is required")
	}
	return nil
}
