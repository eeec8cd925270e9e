package export

// Field is one labelled value printed above a table.
type Field struct {
	Label string
	Value string
}

// Dataset defines tabular export content. Summary and Notes are only rendered by formats that
// support free text.
type Dataset struct {
	Summary []Field
	Headers []string
	Rows    []map[string]string
	Notes   []string
}
