package formtags

import (
	"io/fs"

	"github.com/goliatone/go-formtags/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in form templates so callers can copy
// or extend them without importing the renderer package.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// StylesheetFS exposes the default stylesheet for the vanilla markup.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formtags.StylesheetFS()),
//	  ),
//	)
func StylesheetFS() fs.FS {
	return vanilla.AssetsFS()
}
