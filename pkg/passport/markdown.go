package passport

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/dukex/swimlane/pkg/models"
)

var markdownTemplate = template.Must(template.New("passport").
	Funcs(template.FuncMap{
		"orDash": func(value string) string {
			if strings.TrimSpace(value) == "" {
				return "—"
			}

			return value
		},
		"cell": func(value string) string {
			return strings.ReplaceAll(strings.TrimSpace(value), "|", `\|`)
		},
		"join": strings.Join,
	}).
	Parse(`# Паспорт процесса «{{ .Name }}»

- **Цель:** {{ orDash .Goal }}
- **Владелец:** {{ orDash .Owner }}
- **Старт:** {{ orDash .StartEvent }}
- **Результат:** {{ orDash .EndEvent }}
- **Входящие документы:** {{ orDash (join .InputDocuments ", ") }}
- **Исходящие документы:** {{ orDash (join .OutputDocuments ", ") }}
- **Информационные системы:** {{ orDash (join .InfoSystems ", ") }}

## Основной поток
{{ range .MainFlow }}
{{ .Order }}. {{ .Name }} ({{ .Role }}, {{ .Stage }}){{ if .TimeEstimate }} — {{ .TimeEstimate }}{{ end }}
{{- end }}
{{ if .Exceptions }}
## Исключения
{{ range .Exceptions }}
- {{ . }}
{{- end }}
{{ end }}
## Роли

| Роль | Подразделение | RACI | Блоков |
|---|---|---|---|
{{- range .Roles }}
| {{ cell .Name }} | {{ cell (orDash .Department) }} | {{ .Responsibility }} | {{ .Blocks }} |
{{- end }}
{{ if .SLA }}
## SLA

| Шаг | Роль | Норматив |
|---|---|---|
{{- range .SLA }}
| {{ cell .Step }} | {{ cell .Role }} | {{ cell .Metric }} |
{{- end }}
{{ end }}
{{- if .Risks }}
## Риски
{{ range .Risks }}
- **{{ .Decision }}**: {{ .Risk }}. {{ .Mitigation }}
{{- end }}
{{ end -}}
`))

// RenderMarkdown formats a passport as a Markdown document.
func RenderMarkdown(pass *models.ProcessPassport) ([]byte, error) {
	if pass == nil {
		pass = Project(nil)
	}

	var buf bytes.Buffer
	if err := markdownTemplate.Execute(&buf, pass); err != nil {
		return nil, fmt.Errorf("failed to render passport: %w", err)
	}

	return buf.Bytes(), nil
}
