package main

import (
	"encoding/json"
	"fmt"
	"io"

	"taskboard/internal/client/session"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// render writes v as JSON or YAML, or calls text for the human format.
func render(w io.Writer, format string, v any, text func(io.Writer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(w)
		return nil
	}
}

func renderUser(w io.Writer, format string, u *session.User) error {
	return render(w, format, u, func(w io.Writer) {
		fmt.Fprintf(w, "%s <%s>\n", u.FullName, u.Email)
		fmt.Fprintf(w, "id: %s\n", u.ID)
		if u.JobTitle != "" {
			fmt.Fprintf(w, "job title: %s\n", u.JobTitle)
		}
		if u.Location != "" {
			fmt.Fprintf(w, "location: %s\n", u.Location)
		}
	})
}
