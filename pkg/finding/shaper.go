package finding

// ShapeRows remaps raw result rows through an internal-to-display field
// mapping. Each shaped row has exactly the display-mapped keys; a
// missing internal key yields a nil value, never an error.
func ShapeRows(rows []map[string]interface{}, fields map[string]string) []map[string]interface{} {
	shaped := make([]map[string]interface{}, 0, len(rows))

	for _, row := range rows {
		out := make(map[string]interface{}, len(fields))
		for internal, display := range fields {
			out[display] = row[internal]
		}
		shaped = append(shaped, out)
	}

	return shaped
}
