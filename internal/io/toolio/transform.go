package toolio

import (
	"context"
	"regexp"
	"strings"

	"github.com/gnames/dwcagent/internal/ent/llm"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// transformTool executes a Starlark script against the dataset's
// tables. Scripts are the agent's general-purpose escape hatch for
// reshaping data.
type transformTool struct {
	*deps
}

func (t *transformTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: "Transform",
		Description: "Run a Starlark (Python-like) script against the " +
			"dataset's tables. Available builtins: " +
			"tables() lists tables as dicts with id, title, description, " +
			"columns and num_rows; " +
			"get_table(id) returns {'columns': [...], 'rows': [[...]]}; " +
			"save_table(id, columns, rows) replaces a table's content; " +
			"new_table(title, columns, rows, description='') creates a " +
			"table (or replaces one with the same title) and returns its " +
			"id; " +
			"set_table_info(id, title='', description='') renames a " +
			"table; " +
			"drop_tables(keep=[ids]) deletes every other table; " +
			"uuid4() returns a fresh UUID string; " +
			"normalize_date(s) rewrites a date or 'start/end' range to " +
			"ISO 8601. " +
			"Use print() to see output, truncated to 2000 chars. " +
			"IMPORTANT NOTE #1: State does not persist between calls; " +
			"only table changes saved through the builtins survive. " +
			"IMPORTANT NOTE #2: If you merge or create new tables from " +
			"old ones, tidy up after yourself and drop the stale tables.",
		Parameters: map[string]any{
			"properties": map[string]any{
				"code": map[string]any{
					"type": "string",
					"description": "Starlark script to execute " +
						"against the dataset's tables.",
				},
			},
			"required": []string{"code"},
		},
	}
}

type transformArgs struct {
	Code string `json:"code"`
}

// codeFence strips a leading markdown fence with an optional language
// tag; models wrap scripts in them now and then.
var codeFence = regexp.MustCompile(
	"^\\s*`{3,}\\s*(?i:python|starlark)?\\s*",
)

func (t *transformTool) Run(
	ctx context.Context, ag *model.Agent, args string,
) string {
	var a transformArgs
	if err := t.decode(args, &a); err != nil {
		// Models occasionally send the script as a bare string instead
		// of a JSON object. Take it verbatim.
		a.Code = args
	}
	code := codeFence.ReplaceAllString(a.Code, "")
	code = strings.TrimRight(code, "` \t\n")

	out, err := t.runner.Run(ctx, ag.DatasetID, code)
	if err != nil {
		if out != "" {
			return trunc(out + "\n" + errText(err))
		}
		return errText(err)
	}
	if out == "" {
		return "Executed successfully without errors."
	}
	return trunc(out)
}
