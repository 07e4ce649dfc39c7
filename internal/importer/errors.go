package importer

import (
	"errors"
	"fmt"
	"strings"
)

// User-correctable import failures. The caller surfaces the message and lets
// the user retry; nothing is committed on any of these.
var (
	ErrFileTooLarge = errors.New("fichier trop volumineux")
	ErrNoSheets     = errors.New("aucune feuille disponible dans le fichier")
	ErrEmptySheet   = errors.New("aucune donnée trouvée dans la feuille")
)

// MissingColumnsError reports which mandatory fields matched no header.
type MissingColumnsError struct {
	Fields []Field
}

func (e *MissingColumnsError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, string(f))
	}
	return fmt.Sprintf("colonnes obligatoires introuvables: %s", strings.Join(names, ", "))
}
