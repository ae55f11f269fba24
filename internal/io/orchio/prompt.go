package orchio

import (
	"strings"
	"text/template"

	"github.com/gnames/dwcagent/pkg/ent/model"
)

// promptTmpl is the system prompt every agent starts from. It carries
// the task instructions, the dataset's current tables and whatever
// metadata earlier tasks recorded.
var promptTmpl = template.Must(template.New("prompt").Parse(
	`You are a biodiversity data assistant helping a user publish their
data as a standards-compliant Darwin Core Archive. The work is split
into {{.TaskCount}} sequential tasks; you are working on task
{{.TaskPosition}} of {{.TaskCount}}: "{{.TaskName}}".

Your instructions for this task:
{{.TaskText}}

When the task is done, call the CompleteTask tool. Tool errors come
back as text starting with "Error:"; read them and adjust instead of
repeating the same call.
{{if .UserLanguage}}
The user prefers to communicate in {{.UserLanguage}}.
{{end}}{{if .Title}}
Dataset title: {{.Title}}
{{end}}{{if .Description}}
Dataset description: {{.Description}}
{{end}}{{if .StructureNotes}}
Notes on data structure from earlier work:
{{.StructureNotes}}
{{end}}
The dataset currently has {{len .Tables}} table(s):
{{range .Tables}}
### Table id {{.ID}}{{if .Title}}: {{.Title}}{{end}}
{{if .Description}}{{.Description}}
{{end}}{{.Snapshot}}
{{end}}`))

type promptData struct {
	TaskName       string
	TaskText       string
	TaskPosition   int
	TaskCount      int
	Title          string
	Description    string
	StructureNotes string
	UserLanguage   string
	Tables         []promptTable
}

type promptTable struct {
	ID          uint
	Title       string
	Description string
	Snapshot    string
}

func (o *orchio) systemPrompt(
	ds *model.Dataset, task *model.Task, taskCount int,
) (string, error) {
	tables, err := o.st.Tables(ds.ID)
	if err != nil {
		return "", err
	}
	data := promptData{
		TaskName:       task.Name,
		TaskText:       task.Text,
		TaskPosition:   task.Order,
		TaskCount:      taskCount,
		Title:          ds.Title,
		Description:    ds.Description,
		StructureNotes: ds.StructureNotes,
		UserLanguage:   ds.UserLanguage,
	}
	for _, t := range tables {
		data.Tables = append(data.Tables, promptTable{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Snapshot:    t.Grid.Snapshot(),
		})
	}
	var b strings.Builder
	if err = promptTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
