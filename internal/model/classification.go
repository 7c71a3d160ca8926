package model

// StatusSuccess is the service status value that marks a renderable payload.
const StatusSuccess = "success"

// absentValue is displayed in place of a missing or falsy field value.
const absentValue = "-"

// Field is a single classification output. Present is false for values the
// service sent as null, an empty string, false or zero.
type Field struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Present bool   `json:"present"`
}

// Display returns the value as it appears in the results table.
func (f Field) Display() string {
	if !f.Present || f.Value == "" {
		return absentValue
	}
	return f.Value
}

// ClassificationResult is the decoded payload of a 2xx service response.
// Fields keep the order in which the service supplied them.
type ClassificationResult struct {
	Status string
	Fields []Field
}

// IsSuccess reports whether the payload should be rendered as a table.
func (r *ClassificationResult) IsSuccess() bool {
	return r != nil && r.Status == StatusSuccess
}

// Value looks up a field by name.
func (r *ClassificationResult) Value(name string) (Field, bool) {
	if r == nil {
		return Field{}, false
	}
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Rows returns (name, display value) pairs in service order.
func (r *ClassificationResult) Rows() [][]string {
	if r == nil {
		return nil
	}
	rows := make([][]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		rows = append(rows, []string{f.Name, f.Display()})
	}
	return rows
}

// Set adds a field or, if the name already exists, replaces its value in
// place so the first position is kept.
func (r *ClassificationResult) Set(f Field) {
	for i := range r.Fields {
		if r.Fields[i].Name == f.Name {
			r.Fields[i] = f
			return
		}
	}
	r.Fields = append(r.Fields, f)
}
