package server

import (
	"bytes"
	"io"
	"text/template"
)

const usageTemplate = `vhttp version {{ .Version }} ({{ .Commit }})

Nothing is served at {{ .Path }}.

Routes:
  GET {{ .Host }}/ or {{ .Host }}/files
      list every file with its download url
  GET {{ .Host }}/file/<name>
      download a single file, name percent-encoded
  GET {{ .Host }}/folders
      file names grouped by extension
  GET {{ .Host }}/info
      file count, total size and content types
{{ if .ControlPath }}
Replacing the file set:
  POST a FILE_CACHE_UPDATE message to {{ .Host }}{{ .ControlPath }}
    curl -i -H 'Content-Type: application/json' --data-binary @snapshot.json {{ .Host }}{{ .ControlPath }}
  or open a websocket on the same path to send updates and receive
  {"type":"CACHE_READY","fileCount":N} after every update.
{{ end }}
Currently serving {{ .FileCount }} files.
`

// UsageTemplateContext is the data context to render the usage template with.
type UsageTemplateContext struct {
	Version     string
	Commit      string
	Host        string
	Path        string
	ControlPath string
	FileCount   int
}

var usage = template.Must(template.New("usage").Parse(usageTemplate))

func render(w io.Writer, tpl *template.Template, tplCtx interface{}) error {
	buf := &bytes.Buffer{}

	if err := tpl.Execute(buf, tplCtx); err != nil {
		return err
	}

	_, err := buf.WriteTo(w)

	return err
}
