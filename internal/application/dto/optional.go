package dto

import "encoding/json"

// OptionalString campo de un parche que distingue ausente, null y valor.
// Set queda en true si la clave vino en el JSON; null deja Value en "".
type OptionalString struct {
	Set   bool
	Value string
}

// SetString construye un OptionalString presente con valor v.
func SetString(v string) OptionalString {
	return OptionalString{Set: true, Value: v}
}

// UnmarshalJSON se invoca solo cuando la clave está presente, también con null.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// MarshalJSON ausente y null se serializan como null.
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == "" {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
