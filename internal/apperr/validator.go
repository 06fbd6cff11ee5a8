package apperr

// Messages shared across services.
const (
	MsgRequired      = "This field is required."
	MsgInvalidNumber = "A valid number is required."
	MsgInvalidString = "Not a valid string."
	MsgNegative      = "Ensure this value is greater than or equal to 0."
)

// Validator collects field-level validation messages.
type Validator struct {
	fields map[string][]string
}

// NewValidator returns an empty Validator.
func NewValidator() *Validator {
	return &Validator{fields: map[string][]string{}}
}

// Add records a message for field.
func (v *Validator) Add(field, message string) {
	v.fields[field] = append(v.fields[field], message)
}

// Check records message for field when ok is false.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Add(field, message)
	}
}

// Merge copies the field messages of a validation error into v. Errors of any
// other kind are ignored.
func (v *Validator) Merge(err error) {
	e, ok := As(err)
	if !ok || e.Kind != KindValidation {
		return
	}
	for field, msgs := range e.Fields {
		for _, m := range msgs {
			v.Add(field, m)
		}
	}
}

// Has reports whether field already has a message.
func (v *Validator) Has(field string) bool {
	return len(v.fields[field]) > 0
}

// Valid reports whether no message was recorded.
func (v *Validator) Valid() bool {
	return len(v.fields) == 0
}

// Err returns a validation error, or nil when nothing was recorded.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: v.fields}
}
